// Package task owns the task lifecycle state machine:
// pending -> processing -> {completed, failed}. All record access goes
// through the Manager; transitions that would leave a terminal state
// are rejected as no-ops and logged as anomalies.
package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"review-bot-go/internal/model"
	"review-bot-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager mediates all task record reads and writes
type Manager struct {
	store      *store.TaskStore
	staleAfter time.Duration
	logger     *zap.Logger
}

// NewManager creates a lifecycle manager. staleAfter is how long a
// processing record may go without a heartbeat before claim_next may
// reclaim it.
func NewManager(st *store.TaskStore, staleAfter time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		store:      st,
		staleAfter: staleAfter,
		logger:     logger,
	}
}

// Create inserts a new pending record and returns its task id.
// Resubmitting the same change request always creates a new id; a
// finished task is never mutated.
func (m *Manager) Create(ctx context.Context, repository string, prNumber int, credential string) (string, error) {
	now := time.Now().UTC()
	rec := &store.TaskRecord{
		TaskID:     uuid.NewString(),
		Repository: repository,
		PRNumber:   prNumber,
		Credential: credential,
		State:      model.TaskStatePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := m.store.Create(ctx, rec); err != nil {
		return "", err
	}
	m.logger.Info("Created analysis task",
		zap.String("task_id", rec.TaskID),
		zap.String("repository", repository),
		zap.Int("pr_number", prNumber))
	return rec.TaskID, nil
}

// ClaimNext hands out at most one claimable task, transitioned to
// processing. Returns nil when nothing is claimable.
func (m *Manager) ClaimNext(ctx context.Context) (*store.TaskRecord, error) {
	return m.store.ClaimNext(ctx, m.staleAfter)
}

// ReportProgress updates the progress message of a processing task.
// A late or duplicate worker heartbeat against a finished task is
// logged and dropped, never propagated.
func (m *Manager) ReportProgress(ctx context.Context, taskID, message string) {
	applied, err := m.store.SetProgress(ctx, taskID, message)
	if err != nil {
		m.logger.Warn("Failed to record progress",
			zap.String("task_id", taskID), zap.Error(err))
		return
	}
	if !applied {
		m.logger.Warn("Dropped progress report for task no longer processing",
			zap.String("task_id", taskID),
			zap.String("message", message))
	}
}

// Complete transitions processing -> completed with the given result.
// Calling it on a task not currently processing is a no-op logged as
// an anomaly, which makes double completion after a redelivery safe.
func (m *Manager) Complete(ctx context.Context, taskID string, result *model.AnalysisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to serialize result for task %s: %w", taskID, err)
	}
	applied, err := m.store.SetCompleted(ctx, taskID, string(data))
	if err != nil {
		return err
	}
	if !applied {
		m.logger.Warn("Ignored completion for task not in processing state",
			zap.String("task_id", taskID))
		return nil
	}
	m.logger.Info("Task completed",
		zap.String("task_id", taskID),
		zap.Int("total_issues", result.Summary.TotalIssues))
	return nil
}

// Fail transitions processing -> failed with a stable error code plus
// human-readable message. Same terminal no-op semantics as Complete.
func (m *Manager) Fail(ctx context.Context, taskID, code, message string) error {
	applied, err := m.store.SetFailed(ctx, taskID, code, message)
	if err != nil {
		return err
	}
	if !applied {
		m.logger.Warn("Ignored failure report for task not in processing state",
			zap.String("task_id", taskID),
			zap.String("code", code))
		return nil
	}
	m.logger.Info("Task failed",
		zap.String("task_id", taskID),
		zap.String("code", code),
		zap.String("message", message))
	return nil
}

// RecordRetry bumps the retry counter after a transient fetch failure
func (m *Manager) RecordRetry(ctx context.Context, taskID string) {
	if err := m.store.IncrementRetry(ctx, taskID); err != nil {
		m.logger.Warn("Failed to record retry",
			zap.String("task_id", taskID), zap.Error(err))
	}
}

// Get returns the record for a task id, or store.ErrNotFound
func (m *Manager) Get(ctx context.Context, taskID string) (*store.TaskRecord, error) {
	return m.store.Get(ctx, taskID)
}
