package graph

import (
	"github.com/kubev2v/taskrunner/pkg/errors"
)

// validate checks that every dependency names a defined task other than itself
// and that the dependency relation has no cycle.
func (e *Engine) validate() error {
	for _, t := range e.order {
		for _, d := range t.Dependencies() {
			if d.Name() == t.Name() {
				return errors.NewSelfDependencyError(t.Name())
			}
			if _, ok := e.tasks[d.Name()]; !ok {
				return errors.NewTaskNotFoundError(d.Name())
			}
		}
	}

	if cycle := e.findCycle(); cycle != nil {
		return errors.NewDependencyCycleError(cycle)
	}
	return nil
}

// findCycle walks tasks in definition order and returns one cycle as a list of
// names, first name repeated at the end. It returns nil for an acyclic graph.
func (e *Engine) findCycle() []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(e.order))
	parent := make(map[string]string, len(e.order))
	var cycle []string

	var dfs func(u string) bool
	dfs = func(u string) bool {
		color[u] = gray
		for _, d := range e.tasks[u].Dependencies() {
			v := d.Name()
			switch color[v] {
			case white:
				parent[v] = u
				if dfs(v) {
					return true
				}
			case gray:
				// back-edge u -> v
				path := []string{u}
				for cur := u; cur != v; {
					cur = parent[cur]
					path = append(path, cur)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				cycle = append(path, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for _, t := range e.order {
		if color[t.Name()] == white && dfs(t.Name()) {
			return cycle
		}
	}
	return nil
}
