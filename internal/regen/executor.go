package regen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Enqueuer hands one generation job to the queue backend. Implemented by
// queue.Client; kept narrow so this package stays queue-agnostic.
type Enqueuer interface {
	EnqueueGenerationRun(job Job) error
}

// Coordinator is the slice of the cache layer batch settlement needs: an
// atomic in-flight counter and a sticky failure flag per batch.
type Coordinator interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Decrement(ctx context.Context, key string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// Batches can run for a while but not forever; keys are reaped in case a
// worker dies without settling.
const settlementTTL = 24 * time.Hour

func inflightKey(batchID uuid.UUID) string { return "regen:inflight:" + batchID.String() }
func failureKey(batchID uuid.UUID) string  { return "regen:failure:" + batchID.String() }

// QueueExecutor submits jobs to the queue backend and seeds the settlement
// counter the workers decrement as jobs resolve.
type QueueExecutor struct {
	enq   Enqueuer
	coord Coordinator
}

func NewQueueExecutor(enq Enqueuer, coord Coordinator) *QueueExecutor {
	return &QueueExecutor{enq: enq, coord: coord}
}

func (e *QueueExecutor) Submit(ctx context.Context, batchID uuid.UUID, jobs []Job) error {
	// Counter must exist before the first job can possibly settle.
	if err := e.coord.Set(ctx, inflightKey(batchID), len(jobs), settlementTTL); err != nil {
		return fmt.Errorf("seed inflight counter: %w", err)
	}
	if err := e.coord.Delete(ctx, failureKey(batchID)); err != nil {
		return fmt.Errorf("clear failure flag: %w", err)
	}

	for _, job := range jobs {
		if err := e.enq.EnqueueGenerationRun(job); err != nil {
			return fmt.Errorf("enqueue job for %s %s: %w", job.EntityType, job.EntityID, err)
		}
	}
	return nil
}

// Settler records individual job outcomes and finalizes the batch when the
// last job settles. Per-job counters feed progress display; the aggregate
// failure flag alone decides the terminal status.
type Settler struct {
	store Store
	coord Coordinator
}

func NewSettler(store Store, coord Coordinator) *Settler {
	return &Settler{store: store, coord: coord}
}

func (s *Settler) JobSucceeded(ctx context.Context, batchID uuid.UUID) error {
	if err := s.store.IncrementCompleted(ctx, batchID); err != nil {
		return err
	}
	return s.settle(ctx, batchID)
}

func (s *Settler) JobFailed(ctx context.Context, batchID uuid.UUID) error {
	if err := s.store.IncrementFailed(ctx, batchID); err != nil {
		return err
	}
	if _, err := s.coord.SetNX(ctx, failureKey(batchID), 1, settlementTTL); err != nil {
		return fmt.Errorf("set failure flag: %w", err)
	}
	return s.settle(ctx, batchID)
}

func (s *Settler) settle(ctx context.Context, batchID uuid.UUID) error {
	remaining, err := s.coord.Decrement(ctx, inflightKey(batchID))
	if err != nil {
		return fmt.Errorf("decrement inflight: %w", err)
	}
	if remaining > 0 {
		return nil
	}

	failed, err := s.coord.Exists(ctx, failureKey(batchID))
	if err != nil {
		return fmt.Errorf("check failure flag: %w", err)
	}

	if failed {
		err = s.store.MarkFailed(ctx, batchID)
	} else {
		err = s.store.MarkCompleted(ctx, batchID)
	}
	if err != nil {
		return err
	}

	if err := s.coord.Delete(ctx, inflightKey(batchID), failureKey(batchID)); err != nil {
		slog.Warn("failed to clean settlement keys", "batch_id", batchID, "error", err)
	}

	slog.Info("batch settled", "batch_id", batchID, "failed", failed)
	return nil
}
