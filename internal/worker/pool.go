// Package worker runs the dispatcher: a fixed-size pool of workers
// that claim pending tasks, fetch the change from the diff source,
// run the analysis engine (or reuse a cached result) and report the
// outcome back through the lifecycle manager.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"review-bot-go/internal/analysis"
	"review-bot-go/internal/cache"
	"review-bot-go/internal/github"
	"review-bot-go/internal/model"
	"review-bot-go/internal/store"
	"review-bot-go/internal/task"

	"go.uber.org/zap"
)

// Source fetches the changed files of a change request
type Source interface {
	FetchChangedFiles(ctx context.Context, repository string, prNumber int, credential string) ([]model.ChangedFile, error)
}

// Enricher attaches best-effort commentary to a result. It must not
// alter the findings or the summary.
type Enricher interface {
	Enrich(ctx context.Context, result *model.AnalysisResult) (*model.AnalysisResult, error)
}

// Pool is the fixed-size worker pool
type Pool struct {
	workers      int
	pollInterval time.Duration
	retry        RetryPolicy

	manager  *task.Manager
	source   Source
	engine   *analysis.Engine
	results  *cache.ResultCache
	enricher Enricher
	logger   *zap.Logger

	wg sync.WaitGroup
}

// NewPool wires the dispatcher. enricher may be nil to disable
// commentary.
func NewPool(workers int, pollInterval time.Duration, retry RetryPolicy,
	manager *task.Manager, source Source, engine *analysis.Engine,
	results *cache.ResultCache, enricher Enricher, logger *zap.Logger) *Pool {
	return &Pool{
		workers:      workers,
		pollInterval: pollInterval,
		retry:        retry,
		manager:      manager,
		source:       source,
		engine:       engine,
		results:      results,
		enricher:     enricher,
		logger:       logger,
	}
}

// Start launches the workers. They run until ctx is canceled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
	p.logger.Info("Worker pool started", zap.Int("workers", p.workers))
}

// Wait blocks until every worker has exited
func (p *Pool) Wait() {
	p.wg.Wait()
}

// run is one worker's claim loop. Each worker processes at most one
// task at a time.
func (p *Pool) run(ctx context.Context, id int) {
	logger := p.logger.With(zap.Int("worker", id))
	for {
		rec, err := p.manager.ClaimNext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("Failed to claim task", zap.Error(err))
		} else if rec != nil {
			p.process(ctx, logger, rec)
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.pollInterval):
		}
	}
}

// process runs the full pipeline for one claimed task. The fetch and
// analyze path is pure given identical inputs, so redelivery after a
// crash reruns safely; Complete/Fail are no-ops on terminal tasks.
func (p *Pool) process(ctx context.Context, logger *zap.Logger, rec *store.TaskRecord) {
	logger.Info("Processing task",
		zap.String("task_id", rec.TaskID),
		zap.String("repository", rec.Repository),
		zap.Int("pr_number", rec.PRNumber))

	p.manager.ReportProgress(ctx, rec.TaskID, "Fetching pull request data...")

	var files []model.ChangedFile
	err := p.retry.Do(ctx, func() error {
		var fetchErr error
		files, fetchErr = p.source.FetchChangedFiles(ctx, rec.Repository, rec.PRNumber, rec.Credential)
		return fetchErr
	}, func(attempt int, err error) {
		logger.Warn("Transient fetch failure, retrying",
			zap.String("task_id", rec.TaskID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		p.manager.RecordRetry(ctx, rec.TaskID)
		p.manager.ReportProgress(ctx, rec.TaskID,
			fmt.Sprintf("Retrying fetch (attempt %d)...", attempt))
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// shutdown mid-task: leave the record in processing, the
			// stale-claim path will pick it up
			return
		}
		code, msg := failureFor(err)
		if ferr := p.manager.Fail(ctx, rec.TaskID, code, msg); ferr != nil {
			logger.Error("Failed to record task failure",
				zap.String("task_id", rec.TaskID), zap.Error(ferr))
		}
		return
	}

	fingerprint := cache.Fingerprint(rec.Repository, rec.PRNumber, files)
	result, hit := p.results.Get(fingerprint)
	if hit {
		logger.Info("Cache hit, skipping analysis",
			zap.String("task_id", rec.TaskID),
			zap.String("fingerprint", fingerprint[:12]))
	} else {
		p.manager.ReportProgress(ctx, rec.TaskID,
			fmt.Sprintf("Analyzing %d changed files...", len(files)))
		result = p.engine.Analyze(files)
		p.results.Put(fingerprint, result)
	}

	// Enrichment is best effort and never cached: commentary is not
	// deterministic and must not break the byte-identical cache
	// guarantee.
	if p.enricher != nil {
		p.manager.ReportProgress(ctx, rec.TaskID, "Generating review commentary...")
		enriched, err := p.enricher.Enrich(ctx, result)
		if err != nil {
			logger.Warn("Commentary enrichment failed, using plain result",
				zap.String("task_id", rec.TaskID),
				zap.Error(err))
		} else {
			result = enriched
		}
	}

	if err := p.manager.Complete(ctx, rec.TaskID, result); err != nil {
		logger.Error("Failed to record task completion",
			zap.String("task_id", rec.TaskID), zap.Error(err))
	}
}

// failureFor maps a terminal fetch error onto a stable error code plus
// human-readable message
func failureFor(err error) (code, message string) {
	switch github.KindOf(err) {
	case github.KindNotFound:
		return model.ErrCodeSourceNotFound, "Repository or pull request not found: " + err.Error()
	case github.KindAuth:
		return model.ErrCodeSourceAuth, "Authentication with the source failed: " + err.Error()
	default:
		return model.ErrCodeSourceUnavailable, "Could not fetch change data: " + err.Error()
	}
}
