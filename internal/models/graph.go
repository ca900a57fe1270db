package models

import (
	"fmt"
	"time"
)

// GraphDefinition is the file form of a task graph.
type GraphDefinition struct {
	Name  string           `yaml:"name"`
	Tasks []TaskDefinition `yaml:"tasks"`
}

// TaskDefinition describes one command of a graph.
type TaskDefinition struct {
	Name      string            `yaml:"name"`
	Command   string            `yaml:"command"`
	Args      []string          `yaml:"args,omitempty"`
	Dir       string            `yaml:"dir,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
	DependsOn []string          `yaml:"depends_on,omitempty"`
	Priority  bool              `yaml:"priority,omitempty"`
	Retries   int               `yaml:"retries,omitempty"`
	Timeout   time.Duration     `yaml:"timeout,omitempty"`
}

// Validate checks the definition on its own. Dependency names and cycles are
// checked by the engine when the graph executes.
func (g GraphDefinition) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("graph name is required")
	}
	if len(g.Tasks) == 0 {
		return fmt.Errorf("graph %q has no task", g.Name)
	}

	seen := make(map[string]struct{}, len(g.Tasks))
	for i, t := range g.Tasks {
		if t.Name == "" {
			return fmt.Errorf("task #%d: name is required", i)
		}
		if _, ok := seen[t.Name]; ok {
			return fmt.Errorf("task %q: defined more than once", t.Name)
		}
		seen[t.Name] = struct{}{}

		if t.Command == "" {
			return fmt.Errorf("task %q: command is required", t.Name)
		}
		if t.Retries < 0 {
			return fmt.Errorf("task %q: retries must not be negative", t.Name)
		}
		if t.Timeout < 0 {
			return fmt.Errorf("task %q: timeout must not be negative", t.Name)
		}
	}
	return nil
}
