package store

// Run queries
const (
	queryInsertRun = `
		INSERT INTO runs (id, graph, status, workers, started_at)
		VALUES (?, ?, ?, ?, ?)`

	queryGetRun = `
		SELECT id, graph, status, workers, error, started_at, finished_at
		FROM runs WHERE id = ?`

	queryFinishRun = `
		UPDATE runs SET
			status = ?,
			error = ?,
			finished_at = now()
		WHERE id = ?`
)

// Task result queries
const (
	queryUpsertTaskResult = `
		INSERT INTO task_results (run_id, task, status, output, error, attempts, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, task) DO UPDATE SET
			status = EXCLUDED.status,
			output = EXCLUDED.output,
			error = EXCLUDED.error,
			attempts = EXCLUDED.attempts,
			started_at = EXCLUDED.started_at,
			finished_at = EXCLUDED.finished_at`
)
