package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/kubev2v/taskrunner/internal/models"
	srvErrors "github.com/kubev2v/taskrunner/pkg/errors"
)

// RunStore persists graph runs.
type RunStore struct {
	db QueryInterceptor
}

func NewRunStore(db QueryInterceptor) *RunStore {
	return &RunStore{db: db}
}

// Create records a new run. A zero StartedAt is set to now.
func (s *RunStore) Create(ctx context.Context, run models.Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}
	_, err := s.db.ExecContext(ctx, queryInsertRun, run.ID, run.Graph, string(run.Status), run.Workers, run.StartedAt)
	return err
}

// Finish sets the final status of a run.
func (s *RunStore) Finish(ctx context.Context, id string, status models.RunStatus, runErr error) error {
	var msg sql.NullString
	if runErr != nil {
		msg = sql.NullString{String: runErr.Error(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, queryFinishRun, string(status), msg, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return srvErrors.NewRunNotFoundError(id)
	}
	return nil
}

func (s *RunStore) Get(ctx context.Context, id string) (*models.Run, error) {
	row := s.db.QueryRowContext(ctx, queryGetRun, id)

	var (
		run      models.Run
		status   string
		runErr   sql.NullString
		finished sql.NullTime
	)
	err := row.Scan(&run.ID, &run.Graph, &status, &run.Workers, &runErr, &run.StartedAt, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewRunNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}
	run.Status = models.RunStatus(status)
	run.Error = runErr.String
	run.FinishedAt = fromNullTime(finished)
	return &run, nil
}

// List returns runs. Without options, the most recent run comes first.
func (s *RunStore) List(ctx context.Context, opts ...ListOption) ([]models.Run, error) {
	builder := sq.Select("id", "graph", "status", "workers", "error", "started_at", "finished_at").
		From("runs")

	if len(opts) == 0 {
		opts = []ListOption{WithSort([]SortParam{{Field: "started", Desc: true}})}
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

	var runs []models.Run
	for rows.Next() {
		var (
			run      models.Run
			status   string
			runErr   sql.NullString
			finished sql.NullTime
		)
		if err := rows.Scan(&run.ID, &run.Graph, &status, &run.Workers, &runErr, &run.StartedAt, &finished); err != nil {
			return nil, err
		}
		run.Status = models.RunStatus(status)
		run.Error = runErr.String
		run.FinishedAt = fromNullTime(finished)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (s *RunStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From("runs")

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

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
