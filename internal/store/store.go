package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"review-bot-go/internal/model"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a task id has no record
var ErrNotFound = errors.New("task not found")

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	task_id       TEXT PRIMARY KEY,
	repository    TEXT NOT NULL,
	pr_number     INTEGER NOT NULL,
	credential    TEXT NOT NULL DEFAULT '',
	state         TEXT NOT NULL,
	progress      TEXT NOT NULL DEFAULT '',
	result        TEXT NOT NULL DEFAULT '',
	error_code    TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	retry_count   INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_state_created ON tasks(state, created_at);
`

// TaskRecord is the durable row for one analysis task. The record is
// the single source of truth for task state; result and error_* are
// mutually exclusive and empty outside their terminal states.
type TaskRecord struct {
	TaskID       string
	Repository   string
	PRNumber     int
	Credential   string
	State        model.TaskState
	Progress     string
	Result       string
	ErrorCode    string
	ErrorMessage string
	RetryCount   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TaskStore is a sqlite-backed job record store
type TaskStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the task database. Transactions are
// opened with BEGIN IMMEDIATE so the claim path takes the writer lock
// up front instead of failing on upgrade.
func Open(path string, logger *zap.Logger) (*TaskStore, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open task database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize task schema: %w", err)
	}

	logger.Info("Task store opened", zap.String("path", path))
	return &TaskStore{db: db, logger: logger}, nil
}

// Close closes the underlying database
func (s *TaskStore) Close() error {
	return s.db.Close()
}

// Ping checks database availability
func (s *TaskStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create inserts a new record in pending state
func (s *TaskStore) Create(ctx context.Context, rec *TaskRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (task_id, repository, pr_number, credential, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.TaskID, rec.Repository, rec.PRNumber, rec.Credential,
		string(rec.State), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert task %s: %w", rec.TaskID, err)
	}
	return nil
}

const selectColumns = `task_id, repository, pr_number, credential, state, progress,
	result, error_code, error_message, retry_count, created_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (*TaskRecord, error) {
	var rec TaskRecord
	var state string
	err := row.Scan(&rec.TaskID, &rec.Repository, &rec.PRNumber, &rec.Credential,
		&state, &rec.Progress, &rec.Result, &rec.ErrorCode, &rec.ErrorMessage,
		&rec.RetryCount, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.State = model.TaskState(state)
	return &rec, nil
}

// Get returns the record for a task id, or ErrNotFound
func (s *TaskStore) Get(ctx context.Context, taskID string) (*TaskRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM tasks WHERE task_id = ?`, taskID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task %s: %w", taskID, err)
	}
	return rec, nil
}

// ClaimNext atomically selects the oldest claimable record and
// transitions it to processing. A record is claimable when pending, or
// when stuck in processing longer than staleAfter (a crashed worker's
// abandoned claim). Reclaiming a stale record bumps retry_count. The
// select-and-update runs inside an immediate transaction so two
// workers can never claim the same record.
func (s *TaskStore) ClaimNext(ctx context.Context, staleAfter time.Duration) (*TaskRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	staleBefore := now.Add(-staleAfter)

	row := tx.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM tasks
		 WHERE state = ? OR (state = ? AND updated_at < ?)
		 ORDER BY created_at LIMIT 1`,
		string(model.TaskStatePending), string(model.TaskStateProcessing), staleBefore)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select claimable task: %w", err)
	}

	reclaimed := rec.State == model.TaskStateProcessing
	if reclaimed {
		rec.RetryCount++
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE tasks SET state = ?, retry_count = ?, updated_at = ? WHERE task_id = ?`,
		string(model.TaskStateProcessing), rec.RetryCount, now, rec.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim task %s: %w", rec.TaskID, err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return nil, fmt.Errorf("claim update affected %d rows for task %s", n, rec.TaskID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim for task %s: %w", rec.TaskID, err)
	}

	rec.State = model.TaskStateProcessing
	rec.UpdatedAt = now
	if reclaimed {
		s.logger.Warn("Reclaimed stale processing task",
			zap.String("task_id", rec.TaskID),
			zap.Int("retry_count", rec.RetryCount))
	}
	return rec, nil
}

// SetProgress updates the progress message of a processing task.
// Returns false without error if the task is no longer processing.
func (s *TaskStore) SetProgress(ctx context.Context, taskID, message string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET progress = ?, updated_at = ? WHERE task_id = ? AND state = ?`,
		message, time.Now().UTC(), taskID, string(model.TaskStateProcessing))
	if err != nil {
		return false, fmt.Errorf("failed to update progress for task %s: %w", taskID, err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// SetCompleted transitions processing -> completed and stores the
// serialized result. Returns false if the task was not processing, so
// a late or duplicate completion never overwrites a terminal record.
func (s *TaskStore) SetCompleted(ctx context.Context, taskID, resultJSON string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET state = ?, result = ?, progress = '', updated_at = ?
		 WHERE task_id = ? AND state = ?`,
		string(model.TaskStateCompleted), resultJSON, time.Now().UTC(),
		taskID, string(model.TaskStateProcessing))
	if err != nil {
		return false, fmt.Errorf("failed to complete task %s: %w", taskID, err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// SetFailed transitions processing -> failed and stores the error.
// Same terminal-state guard as SetCompleted.
func (s *TaskStore) SetFailed(ctx context.Context, taskID, code, message string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET state = ?, error_code = ?, error_message = ?, progress = '', updated_at = ?
		 WHERE task_id = ? AND state = ?`,
		string(model.TaskStateFailed), code, message, time.Now().UTC(),
		taskID, string(model.TaskStateProcessing))
	if err != nil {
		return false, fmt.Errorf("failed to mark task %s failed: %w", taskID, err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// IncrementRetry bumps the retry counter of a processing task
func (s *TaskStore) IncrementRetry(ctx context.Context, taskID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET retry_count = retry_count + 1, updated_at = ? WHERE task_id = ? AND state = ?`,
		time.Now().UTC(), taskID, string(model.TaskStateProcessing))
	if err != nil {
		return fmt.Errorf("failed to increment retry count for task %s: %w", taskID, err)
	}
	return nil
}

// DeleteTerminalOlderThan removes completed and failed tasks created
// before the cutoff. Retention is an operational policy, not part of
// the lifecycle contract.
func (s *TaskStore) DeleteTerminalOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE created_at < ? AND state IN (?, ?)`,
		cutoff, string(model.TaskStateCompleted), string(model.TaskStateFailed))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old tasks: %w", err)
	}
	return res.RowsAffected()
}
