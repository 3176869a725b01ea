package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classbridge/qbank-backend/internal/config"
	"github.com/classbridge/qbank-backend/internal/logger"
	"github.com/classbridge/qbank-backend/internal/model"
)

// ErrJobNotFound is returned when an import job id is unknown or expired.
var ErrJobNotFound = errors.New("import job not found")

// ImportJobStatus is the lifecycle state of an asynchronous import job.
type ImportJobStatus string

const (
	ImportJobPending ImportJobStatus = "pending"
	ImportJobDone    ImportJobStatus = "done"
	ImportJobFailed  ImportJobStatus = "failed"
)

// importJobTTL bounds how long finished job results stay readable.
const importJobTTL = 24 * time.Hour

// ImportJob is the stored state of one asynchronous import.
type ImportJob struct {
	ID         uuid.UUID                 `json:"id"`
	Status     ImportJobStatus           `json:"status"`
	Result     *model.BulkImportResponse `json:"result,omitempty"`
	Error      string                    `json:"error,omitempty"`
	EnqueuedAt time.Time                 `json:"enqueuedAt"`
}

// importJobPayload is what travels on the Redis queue.
type importJobPayload struct {
	ID      uuid.UUID                `json:"id"`
	Request *model.BulkImportRequest `json:"request"`
}

// ImportQueue stores import jobs in Redis: a list as the work queue and one
// key per job for its state. Large batches go through here so the HTTP
// request is not held open for the whole reconciliation.
type ImportQueue struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewImportQueue creates a new ImportQueue.
func NewImportQueue(rdb *redis.Client, log zerolog.Logger) *ImportQueue {
	return &ImportQueue{
		rdb: rdb,
		log: logger.Component(log, "import_queue"),
	}
}

// Enqueue stores a pending job record and pushes the request onto the work
// queue. It returns the job id for later polling.
func (q *ImportQueue) Enqueue(ctx context.Context, req *model.BulkImportRequest) (uuid.UUID, error) {
	jobID := uuid.New()
	job := &ImportJob{ID: jobID, Status: ImportJobPending, EnqueuedAt: time.Now().UTC()}

	if err := q.writeJob(ctx, job); err != nil {
		return uuid.Nil, err
	}

	payload, err := json.Marshal(importJobPayload{ID: jobID, Request: req})
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal job payload: %w", err)
	}
	if err := q.rdb.RPush(ctx, config.WorkerKey.ImportJobsQueue, payload).Err(); err != nil {
		return uuid.Nil, fmt.Errorf("enqueue job: %w", err)
	}

	q.log.Info().Str("job_id", jobID.String()).Msg("Import job enqueued")
	return jobID, nil
}

// GetJob reads the current state of a job.
func (q *ImportQueue) GetJob(ctx context.Context, jobID uuid.UUID) (*ImportJob, error) {
	raw, err := q.rdb.Get(ctx, config.CacheKey.ImportJobKey(jobID.String())).Result()
	if err == redis.Nil {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read job: %w", err)
	}

	var job ImportJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// Pop blocks for up to timeout waiting for the next queued job. It returns
// redis.Nil-wrapped errors as (nil, nil) so worker loops can poll quietly.
func (q *ImportQueue) Pop(ctx context.Context, timeout time.Duration) (uuid.UUID, *model.BulkImportRequest, error) {
	result, err := q.rdb.BLPop(ctx, timeout, config.WorkerKey.ImportJobsQueue).Result()
	if err == redis.Nil {
		return uuid.Nil, nil, nil
	}
	if err != nil {
		return uuid.Nil, nil, err
	}
	if len(result) < 2 {
		return uuid.Nil, nil, nil
	}

	var payload importJobPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		return uuid.Nil, nil, fmt.Errorf("unmarshal job payload: %w", err)
	}
	return payload.ID, payload.Request, nil
}

// SetResult marks a job done with its import response.
func (q *ImportQueue) SetResult(ctx context.Context, jobID uuid.UUID, resp model.BulkImportResponse) error {
	job, err := q.loadOrNew(ctx, jobID)
	if err != nil {
		return err
	}
	job.Status = ImportJobDone
	job.Result = &resp
	job.Error = ""
	return q.writeJob(ctx, job)
}

// SetFailed marks a job failed with a message.
func (q *ImportQueue) SetFailed(ctx context.Context, jobID uuid.UUID, message string) error {
	job, err := q.loadOrNew(ctx, jobID)
	if err != nil {
		return err
	}
	job.Status = ImportJobFailed
	job.Error = message
	return q.writeJob(ctx, job)
}

// loadOrNew fetches the stored job, recreating the record if its pending
// entry already expired.
func (q *ImportQueue) loadOrNew(ctx context.Context, jobID uuid.UUID) (*ImportJob, error) {
	job, err := q.GetJob(ctx, jobID)
	if errors.Is(err, ErrJobNotFound) {
		return &ImportJob{ID: jobID, EnqueuedAt: time.Now().UTC()}, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (q *ImportQueue) writeJob(ctx context.Context, job *ImportJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	key := config.CacheKey.ImportJobKey(job.ID.String())
	if err := q.rdb.Set(ctx, key, raw, importJobTTL).Err(); err != nil {
		return fmt.Errorf("store job: %w", err)
	}
	return nil
}
