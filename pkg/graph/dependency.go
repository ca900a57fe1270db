package graph

import (
	"sync"

	"github.com/kubev2v/taskrunner/pkg/errors"
)

// Dependency is a one-way edge from a dependent task to a named prerequisite.
type Dependency struct {
	dependent    *Task
	name         string
	mu           sync.Mutex
	prerequisite *Task
}

func newDependency(dependent *Task, name string) *Dependency {
	return &Dependency{dependent: dependent, name: name}
}

// Name returns the prerequisite name.
func (d *Dependency) Name() string {
	return d.name
}

func (d *Dependency) Dependent() *Task {
	return d.dependent
}

// Prerequisite returns the resolved prerequisite, nil before Resolve.
func (d *Dependency) Prerequisite() *Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.prerequisite
}

// Resolve looks the prerequisite up in the dependent's engine and subscribes to
// its completion. It must be called exactly once.
func (d *Dependency) Resolve() error {
	d.mu.Lock()
	if d.prerequisite != nil {
		d.mu.Unlock()
		return errors.NewDependencyAlreadyResolvedError(d.dependent.Name(), d.name)
	}
	p, err := d.dependent.engine.Resolve(d.name)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	d.prerequisite = p
	d.mu.Unlock()

	p.OnComplete(func(any, error) {
		d.dependent.dependencySatisfied(d)
	})
	return nil
}

// Satisfied reports whether the prerequisite is complete. Failure counts as
// completion.
func (d *Dependency) Satisfied() bool {
	p := d.Prerequisite()
	return p != nil && p.IsComplete()
}
