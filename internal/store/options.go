package store

import (
	sq "github.com/Masterminds/squirrel"
)

// ListOption narrows or orders a List query. Options apply to both runs and
// task results unless stated otherwise.
type ListOption func(sq.SelectBuilder) sq.SelectBuilder

// ByRun keeps task results of the given runs.
func ByRun(ids ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(ids) == 0 {
			return b
		}
		return b.Where(sq.Eq{"run_id": ids})
	}
}

// ByTask keeps task results of the given task names.
func ByTask(names ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(names) == 0 {
			return b
		}
		return b.Where(sq.Eq{"task": names})
	}
}

// ByGraph keeps runs of the given graphs.
func ByGraph(names ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(names) == 0 {
			return b
		}
		return b.Where(sq.Eq{"graph": names})
	}
}

func ByStatus(statuses ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(statuses) == 0 {
			return b
		}
		return b.Where(sq.Eq{"status": statuses})
	}
}

func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}

type SortParam struct {
	Field string
	Desc  bool
}

var sortFieldToColumn = map[string]string{
	"task":     "task",
	"graph":    "graph",
	"status":   "status",
	"started":  "started_at",
	"finished": "finished_at",
}

// WithDefaultSort orders by start time, oldest first.
func WithDefaultSort() ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.OrderBy("started_at ASC NULLS LAST")
	}
}

// WithSort applies multi-field sorting. Unknown fields are ignored. Start time
// is always appended as a tie-breaker.
func WithSort(sorts []SortParam) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		var orderClauses []string
		for _, s := range sorts {
			col, ok := sortFieldToColumn[s.Field]
			if !ok {
				continue
			}
			if s.Desc {
				orderClauses = append(orderClauses, col+" DESC")
			} else {
				orderClauses = append(orderClauses, col+" ASC")
			}
		}
		orderClauses = append(orderClauses, "started_at ASC NULLS LAST")
		return b.OrderBy(orderClauses...)
	}
}
