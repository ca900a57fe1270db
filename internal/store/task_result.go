package store

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/kubev2v/taskrunner/internal/models"
)

// TaskResultStore persists the outcome of every task of a run.
type TaskResultStore struct {
	db QueryInterceptor
}

func NewTaskResultStore(db QueryInterceptor) *TaskResultStore {
	return &TaskResultStore{db: db}
}

// Save stores the result of a task, replacing any previous result of the same
// task in the same run.
func (s *TaskResultStore) Save(ctx context.Context, r models.TaskResult) error {
	_, err := s.db.ExecContext(ctx, queryUpsertTaskResult,
		r.RunID,
		r.Task,
		string(r.Status),
		r.Output,
		nullString(r.Error),
		r.Attempts,
		toNullTime(r.StartedAt),
		toNullTime(r.FinishedAt),
	)
	return err
}

func (s *TaskResultStore) List(ctx context.Context, opts ...ListOption) ([]models.TaskResult, error) {
	builder := sq.Select("run_id", "task", "status", "output", "error", "attempts", "started_at", "finished_at").
		From("task_results")

	if len(opts) == 0 {
		opts = []ListOption{WithDefaultSort()}
	}
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.TaskResult
	for rows.Next() {
		var (
			r        models.TaskResult
			status   string
			output   sql.NullString
			taskErr  sql.NullString
			started  sql.NullTime
			finished sql.NullTime
		)
		if err := rows.Scan(&r.RunID, &r.Task, &status, &output, &taskErr, &r.Attempts, &started, &finished); err != nil {
			return nil, err
		}
		r.Status = models.TaskStatus(status)
		r.Output = output.String
		r.Error = taskErr.String
		r.StartedAt = fromNullTime(started)
		r.FinishedAt = fromNullTime(finished)
		results = append(results, r)
	}

	return results, rows.Err()
}

func (s *TaskResultStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From("task_results")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
