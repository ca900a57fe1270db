package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kubev2v/taskrunner/internal/models"
	"github.com/kubev2v/taskrunner/internal/services"
)

func newResultsCommand(v *viper.Viper) *cobra.Command {
	var (
		runID    string
		graph    string
		statuses []string
		tasks    []string
		limit    uint64
	)

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show the task results of a run, the latest one by default",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				if _, err := models.ParseTaskStatus(s); err != nil {
					return err
				}
			}

			flush, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			defer flush()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			st, err := openStore(ctx, cfg.Store.DataFolder)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := services.NewResultService(st)

			var run *models.Run
			if runID != "" {
				run, err = srv.Run(ctx, runID)
			} else {
				run, err = srv.LatestRun(ctx, graph)
			}
			if err != nil {
				return err
			}
			if run == nil {
				fmt.Fprintln(out, "no run found")
				return nil
			}

			res, err := srv.List(ctx, services.ResultListParams{
				RunIDs:   []string{run.ID},
				Tasks:    tasks,
				Statuses: statuses,
				Limit:    limit,
			})
			if err != nil {
				return err
			}

			printRun(out, *run)
			printResults(out, res.Results)
			if limit > 0 && res.Total > len(res.Results) {
				fmt.Fprintf(out, "%d of %d results shown\n", len(res.Results), res.Total)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&runID, "run", "", "run id, the latest run if empty")
	flags.StringVar(&graph, "graph-name", "", "restrict the latest run to a graph")
	flags.StringSliceVar(&statuses, "status", nil, "filter by task status: succeeded, failed or cancelled")
	flags.StringSliceVar(&tasks, "task", nil, "filter by task name")
	flags.Uint64Var(&limit, "limit", 0, "maximum number of results, all if 0")
	return cmd
}
