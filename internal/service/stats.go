package service

import (
	"context"
	"time"

	"github.com/mwantia/goshare/pkg/db/store"
)

// Snapshot is a point-in-time view of the bot's stored state.
type Snapshot struct {
	Users          int64         `json:"users"`
	Files          int64         `json:"files"`
	Batches        int64         `json:"batches"`
	PendingDeletes int64         `json:"pending_deletes"`
	Uptime         time.Duration `json:"uptime"`
}

// Stats aggregates the store counters for the admin surface and the health
// endpoint.
type Stats struct {
	store   store.Store
	started time.Time
}

func NewStats(s store.Store) *Stats {
	return &Stats{
		store:   s,
		started: time.Now(),
	}
}

// Uptime reports how long this process has been serving.
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.started).Round(time.Second)
}

// Snapshot collects the current counts. Counts are read independently, not
// transactionally; for display only.
func (s *Stats) Snapshot(ctx context.Context) (*Snapshot, error) {
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	files, err := s.store.CountFiles(ctx)
	if err != nil {
		return nil, err
	}
	batches, err := s.store.CountBatches(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.store.CountPendingDeletes(ctx)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Users:          users,
		Files:          files,
		Batches:        batches,
		PendingDeletes: pending,
		Uptime:         s.Uptime(),
	}, nil
}
