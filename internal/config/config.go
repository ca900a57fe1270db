package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
)

const (
	ServerModeDev  = "dev"
	ServerModeProd = "prod"
)

type Configuration struct {
	Server    Server `debugmap:"visible"`
	Runner    Runner `debugmap:"visible"`
	Store     Store  `debugmap:"visible"`
	LogFormat string `debugmap:"visible" default:"console"`
	LogLevel  string `debugmap:"visible" default:"info"`
}

type Runner struct {
	Workers       int    `debugmap:"visible" default:"3"`
	Name          string `debugmap:"visible" default:"taskrunner"`
	StopOnFailure bool   `debugmap:"visible" default:"false"`
	GraphFile     string `debugmap:"visible"`
}

type Server struct {
	HTTPPort int    `debugmap:"visible" default:"8000"`
	Mode     string `debugmap:"visible" default:"dev"`
}

type Store struct {
	DataFolder string `debugmap:"visible"`
}

type Option func(*Configuration)

func WithServer(s Server) Option {
	return func(c *Configuration) {
		c.Server = s
	}
}

func WithRunner(r Runner) Option {
	return func(c *Configuration) {
		c.Runner = r
	}
}

func WithStore(s Store) Option {
	return func(c *Configuration) {
		c.Store = s
	}
}

func WithLogFormat(format string) Option {
	return func(c *Configuration) {
		c.LogFormat = format
	}
}

func WithLogLevel(level string) Option {
	return func(c *Configuration) {
		c.LogLevel = level
	}
}

// NewConfigurationWithOptionsAndDefaults applies the default tags, then opts.
// Zero fields of a section set by an option are defaulted again.
func NewConfigurationWithOptionsAndDefaults(opts ...Option) (*Configuration, error) {
	c := &Configuration{}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("failed to set configuration defaults: %w", err)
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("failed to set configuration defaults: %w", err)
	}
	return c, nil
}

func (c *Configuration) Validate() error {
	if c.Runner.Workers < 1 {
		return fmt.Errorf("invalid number of workers %d: must be at least 1", c.Runner.Workers)
	}
	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port %d", c.Server.HTTPPort)
	}
	switch c.Server.Mode {
	case ServerModeDev, ServerModeProd:
	default:
		return fmt.Errorf("invalid server mode %q: must be dev or prod", c.Server.Mode)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be console or json", c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}

// DebugMap returns the fields tagged debugmap:"visible", keyed by their dotted
// path, for structured logging.
func (c *Configuration) DebugMap() map[string]any {
	m := make(map[string]any)
	debugMap(reflect.ValueOf(*c), "", m)
	return m
}

func debugMap(v reflect.Value, prefix string, m map[string]any) {
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if f.Tag.Get("debugmap") != "visible" {
			continue
		}
		key := strings.ToLower(f.Name)
		if prefix != "" {
			key = prefix + "." + key
		}
		if f.Type.Kind() == reflect.Struct {
			debugMap(v.Field(i), key, m)
			continue
		}
		m[key] = v.Field(i).Interface()
	}
}
