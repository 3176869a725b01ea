package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/classbridge/qbank-backend/internal/logger"
	"github.com/classbridge/qbank-backend/internal/service"
)

// ImportPollTimeout is how long a single queue poll blocks.
const ImportPollTimeout = time.Second

// ImportWorker consumes import_jobs_queue and runs each queued batch
// through the reconciler, storing the result under the job key.
type ImportWorker struct {
	queue   *service.ImportQueue
	imports *service.ImportService
	log     zerolog.Logger
}

// NewImportWorker creates a new ImportWorker.
func NewImportWorker(queue *service.ImportQueue, imports *service.ImportService, log zerolog.Logger) *ImportWorker {
	return &ImportWorker{
		queue:   queue,
		imports: imports,
		log:     logger.Component(log, "import_worker"),
	}
}

// Start begins the worker loop. Call in a goroutine. A job picked up
// before shutdown is finished with a background context so its partial
// results are never discarded.
func (w *ImportWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *ImportWorker) processNext(ctx context.Context) {
	jobID, req, err := w.queue.Pop(ctx, ImportPollTimeout)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Queue pop error")
		}
		return
	}
	if req == nil {
		return
	}

	// Run to completion even if shutdown begins mid-batch.
	jobCtx := context.Background()

	resp, err := w.imports.Run(jobCtx, req)
	if err != nil {
		w.log.Error().Err(err).Str("job_id", jobID.String()).Msg("Import job failed")
		if err := w.queue.SetFailed(jobCtx, jobID, err.Error()); err != nil {
			w.log.Error().Err(err).Str("job_id", jobID.String()).Msg("Store job failure error")
		}
		return
	}

	if err := w.queue.SetResult(jobCtx, jobID, resp); err != nil {
		w.log.Error().Err(err).Str("job_id", jobID.String()).Msg("Store job result error")
		return
	}

	w.log.Info().
		Str("job_id", jobID.String()).
		Int("imported", resp.Imported).
		Int("updated", resp.Updated).
		Int("failed", resp.Failed).
		Msg("Import job finished")
}
