// Package selector decides which animals are due for a detail refresh in the current run.
//
// An animal is due when it has never been refreshed or when its last refresh is older than
// the staleness threshold. At most BatchLimit animals are returned per run, oldest first;
// the rest wait for a later run, so a large backlog converges over several runs instead of
// being drained at once.
package selector

import (
	"context"
	"fmt"
	"time"

	"livestock-sync/internal/livestock_sync/model"
	"livestock-sync/internal/livestock_sync/registry"
)

const (
	DefaultThreshold  = 24 * time.Hour
	DefaultBatchLimit = 500
)

// StaleFinder is the registry query the selector is built on.
type StaleFinder interface {
	SelectStaleAnimals(ctx context.Context, threshold time.Duration, limit int, now time.Time) ([]model.Animal, error)
}

type Selector struct {
	Finder     StaleFinder
	Threshold  time.Duration
	BatchLimit int
}

// New returns a Selector, substituting defaults for non-positive values.
func New(finder StaleFinder, threshold time.Duration, batchLimit int) *Selector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if batchLimit <= 0 {
		batchLimit = DefaultBatchLimit
	}
	return &Selector{Finder: finder, Threshold: threshold, BatchLimit: batchLimit}
}

// Select returns the due batch for a run started at now. The result is re-checked against
// the threshold, re-sorted and capped here, whatever the backing store returned.
func (s *Selector) Select(ctx context.Context, now time.Time) ([]model.Animal, error) {
	candidates, err := s.Finder.SelectStaleAnimals(ctx, s.Threshold, s.BatchLimit, now)
	if err != nil {
		return nil, fmt.Errorf("select stale animals: %w", err)
	}

	cutoff := registry.Cutoff(now, s.Threshold)
	due := candidates[:0]
	for _, a := range candidates {
		if IsDue(a, cutoff) {
			due = append(due, a)
		}
	}
	registry.SortByStaleness(due)
	if len(due) > s.BatchLimit {
		due = due[:s.BatchLimit]
	}
	return due, nil
}

// IsDue reports whether a is missing a timestamp or was last refreshed before cutoff.
func IsDue(a model.Animal, cutoff time.Time) bool {
	return a.LastUpdated == nil || a.LastUpdated.Before(cutoff)
}
