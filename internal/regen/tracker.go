package regen

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tripdesk/backend/internal/models"
)

// BatchView is the polling-surface shape of one batch.
type BatchView struct {
	ID            uuid.UUID          `json:"id"`
	Scope         models.BatchScope  `json:"scope"`
	GeneratorType string             `json:"generator_type,omitempty"`
	Status        models.BatchStatus `json:"status"`
	Progress      int                `json:"progress"`
	TotalJobs     int                `json:"total_jobs"`
	CompletedJobs int                `json:"completed_jobs"`
	FailedJobs    int                `json:"failed_jobs"`
}

// Snapshot is the status-poll response for one project.
type Snapshot struct {
	IsRegenerating    bool        `json:"is_regenerating"`
	ActiveBatches     []BatchView `json:"active_batches"`
	RecentlyCompleted []BatchView `json:"recently_completed"`
}

// snapshotCache is the cache slice the tracker uses; nil-able.
type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Tracker computes the polling snapshot from the batch store, with a short
// cache in front since the UI polls aggressively.
type Tracker struct {
	store  Store
	cache  snapshotCache
	window time.Duration
	ttl    time.Duration
}

func NewTracker(store Store, cache snapshotCache, window, cacheTTL time.Duration) *Tracker {
	return &Tracker{store: store, cache: cache, window: window, ttl: cacheTTL}
}

func (t *Tracker) Status(ctx context.Context, projectID uuid.UUID) (*Snapshot, error) {
	key := "regen:status:" + projectID.String()

	if t.cache != nil {
		var cached Snapshot
		if err := t.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	active, err := t.store.ActiveBatches(ctx, projectID)
	if err != nil {
		return nil, err
	}
	recent, err := t.store.RecentlyCompleted(ctx, projectID, t.window)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		IsRegenerating:    len(active) > 0,
		ActiveBatches:     views(active),
		RecentlyCompleted: views(recent),
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, key, snap, t.ttl); err != nil {
			slog.Warn("failed to cache status snapshot", "project_id", projectID, "error", err)
		}
	}

	return snap, nil
}

func views(batches []models.RegenerationBatch) []BatchView {
	out := make([]BatchView, 0, len(batches))
	for i := range batches {
		b := &batches[i]
		out = append(out, BatchView{
			ID:            b.ID,
			Scope:         b.Scope,
			GeneratorType: b.GeneratorType,
			Status:        b.Status,
			Progress:      b.ProgressPercentage(),
			TotalJobs:     b.TotalJobs,
			CompletedJobs: b.CompletedJobs,
			FailedJobs:    b.FailedJobs,
		})
	}
	return out
}
