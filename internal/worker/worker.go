// Package worker implements background task handlers for asynchronous rate imports.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"exchangebank/internal/service"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NewImportHandler returns a function to handle rate import tasks. The importer runs at most
// once per job: failures are recorded on the job and marked with asynq.SkipRetry.
func NewImportHandler(svc service.ExchangeServiceInterface, logger *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload service.ImportRatesPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Errorw("Invalid task payload", "type", t.Type(), "error", err)
			return nil
		}

		if err := svc.ProcessImport(ctx, payload.JobID); err != nil {
			logger.Errorw("Task processing failed", "job_id", payload.JobID, "error", err)
			return fmt.Errorf("import job %s: %v: %w", payload.JobID, err, asynq.SkipRetry)
		}

		logger.Infow("Task completed", "job_id", payload.JobID)
		return nil
	}
}

// AsynqEnqueuer enqueues import tasks to an Asynq queue with a retry limit and timeout.
// Handler errors are never retried, so maxRetry only covers tasks whose worker died mid-run.
type AsynqEnqueuer struct {
	client   *asynq.Client
	maxRetry int
	timeout  time.Duration
}

// NewAsynqEnqueuer creates a new AsynqEnqueuer with the given client, retry limit, and task timeout duration.
func NewAsynqEnqueuer(client *asynq.Client, maxRetry int, timeout time.Duration) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client:   client,
		maxRetry: maxRetry,
		timeout:  timeout,
	}
}

// EnqueueImportTask enqueues a rate import task. The job ID doubles as the Asynq task ID,
// so a job cannot be enqueued twice.
func (e *AsynqEnqueuer) EnqueueImportTask(ctx context.Context, payload service.ImportRatesPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(service.TaskTypeImportRates, data,
		asynq.MaxRetry(e.maxRetry),
		asynq.Timeout(e.timeout),
		asynq.TaskID(payload.JobID),
	)

	_, err = e.client.EnqueueContext(ctx, task)
	return err
}
