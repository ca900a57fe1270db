package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kubev2v/taskrunner/internal/config"
)

const envPrefix = "TASKRUNNER"

func newRootCommand() *cobra.Command {
	v := newViper()

	defaults, err := config.NewConfigurationWithOptionsAndDefaults()
	if err != nil {
		panic(err)
	}

	root := &cobra.Command{
		Use:   "taskrunner",
		Short: "Run a graph of dependent commands on a bounded worker pool",
		Long: `taskrunner executes the tasks of a YAML graph file. A task starts as soon as
every task it depends on has completed, on a fixed number of workers. Every run
and task outcome is stored in a DuckDB database of the data folder.

Examples:
  # Run a graph on 4 workers
  taskrunner run --graph nightly.yaml --workers 4 --data-folder ./data

  # Show the failed tasks of the last run
  taskrunner results --status failed --data-folder ./data

  # Serve the stored results over HTTP
  taskrunner serve --http-port 8000 --data-folder ./data`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return v.BindPFlags(cmd.Flags())
		},
	}

	flags := root.PersistentFlags()
	flags.String("log-format", defaults.LogFormat, "log format: console or json")
	flags.String("log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	flags.String("data-folder", defaults.Store.DataFolder, "folder of the results database, in memory if empty")

	root.AddCommand(newRunCommand(v, defaults))
	root.AddCommand(newResultsCommand(v))
	root.AddCommand(newServeCommand(v, defaults))
	root.AddCommand(newVersionCommand())
	return root
}

// newViper resolves every flag name from TASKRUNNER_<NAME> as well,
// dashes replaced by underscores.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig builds the configuration from flags and TASKRUNNER_* variables.
func loadConfig(v *viper.Viper) (*config.Configuration, error) {
	cfg, err := config.NewConfigurationWithOptionsAndDefaults(
		config.WithServer(config.Server{
			HTTPPort: v.GetInt("http-port"),
			Mode:     v.GetString("server-mode"),
		}),
		config.WithRunner(config.Runner{
			Workers:       v.GetInt("workers"),
			Name:          v.GetString("name"),
			StopOnFailure: v.GetBool("stop-on-failure"),
			GraphFile:     v.GetString("graph"),
		}),
		config.WithStore(config.Store{
			DataFolder: v.GetString("data-folder"),
		}),
		config.WithLogFormat(v.GetString("log-format")),
		config.WithLogLevel(v.GetString("log-level")),
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupLogger installs the global logger used through zap.S().
func setupLogger(cfg *config.Configuration) (func(), error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if cfg.LogFormat == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	undo := zap.ReplaceGlobals(logger)
	return func() {
		_ = logger.Sync()
		undo()
	}, nil
}

func addRunnerFlags(flags *pflag.FlagSet, defaults *config.Configuration) {
	flags.StringP("graph", "g", defaults.Runner.GraphFile, "path to the YAML graph file")
	flags.IntP("workers", "w", defaults.Runner.Workers, "number of workers")
	flags.String("name", defaults.Runner.Name, "name of the worker pool")
	flags.Bool("stop-on-failure", defaults.Runner.StopOnFailure, "abort the run on the first failed task")
}
