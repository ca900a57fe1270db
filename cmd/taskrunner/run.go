package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kubev2v/taskrunner/internal/config"
	"github.com/kubev2v/taskrunner/internal/models"
	"github.com/kubev2v/taskrunner/internal/services"
	"github.com/kubev2v/taskrunner/internal/store"
	"github.com/kubev2v/taskrunner/internal/store/migrations"
	"github.com/kubev2v/taskrunner/pkg/scheduler"
)

func newRunCommand(v *viper.Viper, defaults *config.Configuration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [graph file]",
		Short: "Execute a graph file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Runner.GraphFile = args[0]
			}
			if cfg.Runner.GraphFile == "" {
				return fmt.Errorf("a graph file is required: use --graph or pass it as argument")
			}

			flush, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			defer flush()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, cmd.OutOrStdout())
		},
	}
	addRunnerFlags(cmd.Flags(), defaults)
	return cmd
}

func run(ctx context.Context, cfg *config.Configuration, out io.Writer) error {
	zap.S().Infow("configuration loaded", "config", cfg.DebugMap())

	def, err := services.LoadGraph(cfg.Runner.GraphFile)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg.Store.DataFolder)
	if err != nil {
		return err
	}
	defer st.Close()

	sched := scheduler.NewScheduler(cfg.Runner.Workers, cfg.Runner.Name)
	defer sched.Close()

	runner := services.NewRunner(sched, st, services.WithStopOnFailure(cfg.Runner.StopOnFailure))
	summary, err := runner.Run(ctx, *def)
	if err != nil {
		return err
	}

	printSummary(out, summary)
	if summary.Run.Status != models.RunStatusSucceeded {
		return fmt.Errorf("run %s %s", summary.Run.ID, summary.Run.Status)
	}
	return nil
}

func openStore(ctx context.Context, folder string) (*store.Store, error) {
	db, err := store.NewDBInFolder(folder)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store.NewStore(db), nil
}
