package store

import "database/sql"

// Store provides access to all storage repositories.
type Store struct {
	db      *sql.DB
	runs    *RunStore
	results *TaskResultStore
}

func NewStore(db *sql.DB) *Store {
	qi := NewQueryInterceptor(db)
	return &Store{
		db:      db,
		runs:    NewRunStore(qi),
		results: NewTaskResultStore(qi),
	}
}

func (s *Store) Runs() *RunStore {
	return s.runs
}

func (s *Store) Results() *TaskResultStore {
	return s.results
}

func (s *Store) Close() error {
	return s.db.Close()
}
