// Package config defines the configuration structure for taskrunner.
//
// Configuration is organized into sections (Server, Runner, Store) and uses
// github.com/creasty/defaults to fill every zero field from its default tag.
//
// # Configuration Structure
//
//	Configuration
//	├── Server         - Results HTTP API
//	├── Runner         - Worker pool and graph execution
//	├── Store          - Results database
//	├── LogFormat      - Logging format
//	└── LogLevel       - Logging verbosity
//
// # Server Configuration
//
//	┌──────────────────┬─────────┬────────────────────────────────────────────┐
//	│ Field            │ Default │ Description                                │
//	├──────────────────┼─────────┼────────────────────────────────────────────┤
//	│ HTTPPort         │ 8000    │ Port of `taskrunner serve`                 │
//	│ Mode             │ "dev"   │ "dev" (gin debug) or "prod" (gin release)  │
//	└──────────────────┴─────────┴────────────────────────────────────────────┘
//
// # Runner Configuration
//
//	┌──────────────────┬──────────────┬────────────────────────────────────────┐
//	│ Field            │ Default      │ Description                            │
//	├──────────────────┼──────────────┼────────────────────────────────────────┤
//	│ Workers          │ 3            │ Number of scheduler workers            │
//	│ Name             │ "taskrunner" │ Pool name, prefix of worker ids        │
//	│ StopOnFailure    │ false        │ Abort the graph on the first failure   │
//	│ GraphFile        │ ""           │ Path to the YAML graph definition      │
//	└──────────────────┴──────────────┴────────────────────────────────────────┘
//
// # Store Configuration
//
//	┌──────────────────┬─────────┬────────────────────────────────────────────┐
//	│ Field            │ Default │ Description                                │
//	├──────────────────┼─────────┼────────────────────────────────────────────┤
//	│ DataFolder       │ ""      │ DuckDB folder, in-memory database if empty │
//	└──────────────────┴─────────┴────────────────────────────────────────────┘
//
// # Logging
//
//	┌──────────────────┬───────────┬──────────────────────────────────────────┐
//	│ Field            │ Default   │ Description                              │
//	├──────────────────┼───────────┼──────────────────────────────────────────┤
//	│ LogFormat        │ "console" │ "console" or "json"                      │
//	│ LogLevel         │ "info"    │ debug, info, warn or error               │
//	└──────────────────┴───────────┴──────────────────────────────────────────┘
//
// # Sources
//
// The command line binds every field to a flag and to a TASKRUNNER_* environment
// variable through viper. Flags win over the environment, which wins over defaults.
//
// # Usage Example
//
//	cfg, err := config.NewConfigurationWithOptionsAndDefaults(
//	    config.WithRunner(config.Runner{
//	        Workers:   8,
//	        GraphFile: "nightly.yaml",
//	    }),
//	    config.WithLogLevel("debug"),
//	)
//
// # Debug Logging
//
// All fields are tagged with `debugmap:"visible"` allowing safe logging
// of configuration values via DebugMap():
//
//	zap.S().Infow("configuration loaded", "config", cfg.DebugMap())
package config
