package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/tripdesk/backend/internal/regen"
)

// GenerationWorker consumes generation jobs: run the pipeline, then settle the
// batch. Job failures are absorbed here; returning an error would make asynq
// re-run a job that has already been counted.
type GenerationWorker struct {
	pipeline *regen.Pipeline
	settler  *regen.Settler
}

func NewGenerationWorker(pipeline *regen.Pipeline, settler *regen.Settler) *GenerationWorker {
	return &GenerationWorker{pipeline: pipeline, settler: settler}
}

func (w *GenerationWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var job regen.Job
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	slog.Info("running generation job",
		"batch_id", job.BatchID,
		"entity_type", job.EntityType,
		"entity_id", job.EntityID,
		"generator", job.Generator,
	)

	if err := w.pipeline.Run(ctx, job); err != nil {
		slog.Error("generation job failed",
			"batch_id", job.BatchID,
			"entity_type", job.EntityType,
			"entity_id", job.EntityID,
			"error", err,
		)
		if settleErr := w.settler.JobFailed(ctx, job.BatchID); settleErr != nil {
			return fmt.Errorf("settle failed job: %w", settleErr)
		}
		return nil
	}

	if err := w.settler.JobSucceeded(ctx, job.BatchID); err != nil {
		return fmt.Errorf("settle succeeded job: %w", err)
	}

	slog.Info("generation job done", "batch_id", job.BatchID, "entity_id", job.EntityID)
	return nil
}
