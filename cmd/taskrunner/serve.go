package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/taskrunner/api/v1"
	"github.com/kubev2v/taskrunner/internal/config"
	"github.com/kubev2v/taskrunner/internal/handlers"
	"github.com/kubev2v/taskrunner/internal/server"
	"github.com/kubev2v/taskrunner/internal/services"
)

func newServeCommand(v *viper.Viper, defaults *config.Configuration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored runs and task results over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if cfg.Store.DataFolder == "" {
				return fmt.Errorf("a data folder is required: use --data-folder")
			}

			flush, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			defer flush()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
	cmd.Flags().Int("http-port", defaults.Server.HTTPPort, "port of the HTTP API")
	cmd.Flags().String("server-mode", defaults.Server.Mode, "server mode: dev or prod")
	return cmd
}

func serve(ctx context.Context, cfg *config.Configuration) error {
	zap.S().Infow("configuration loaded", "config", cfg.DebugMap())

	st, err := openStore(ctx, cfg.Store.DataFolder)
	if err != nil {
		return err
	}
	defer st.Close()

	h := handlers.New(services.NewResultService(st))
	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
		v1.RegisterHandlers(router, h)
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := srv.Stop(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return <-errCh
}
