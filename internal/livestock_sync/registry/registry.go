// Package registry is the durable store of known farms and animals together with the
// timestamps that drive incremental refresh. Every write is an upsert keyed by natural id;
// nothing is ever deleted.
package registry

import (
	"context"
	"errors"
	"time"

	"livestock-sync/internal/livestock_sync/model"
)

// ErrNotFound is returned by lookups for an unknown natural id.
var ErrNotFound = errors.New("registry: not found")

// Registry is the entity store used by the sync pipeline.
type Registry interface {
	// UpsertFarm overwrites the farm's fields, keyed by FarmUniqueNo.
	UpsertFarm(ctx context.Context, farm model.Farm) error

	// ListFarms returns every known farm, normalized.
	ListFarms(ctx context.Context) ([]model.Farm, error)

	// UpsertAnimalStatus records an animal sighting. It never touches last_updated.
	UpsertAnimalStatus(ctx context.Context, cattleNo, farmID string, status model.AnimalStatus) error

	// UpsertAnimalDetail writes the history bundle for one animal.
	UpsertAnimalDetail(ctx context.Context, detail model.AnimalHistoryDetail) error

	// TouchAnimalTimestamp sets the animal's last_updated.
	TouchAnimalTimestamp(ctx context.Context, cattleNo string, ts time.Time) error

	// SelectStaleAnimals returns up to limit animals whose last_updated is missing or older
	// than now-threshold, oldest first with missing timestamps leading.
	SelectStaleAnimals(ctx context.Context, threshold time.Duration, limit int, now time.Time) ([]model.Animal, error)
}

// Reader is the read side used by the HTTP API.
type Reader interface {
	ListFarms(ctx context.Context) ([]model.Farm, error)
	ListAnimals(ctx context.Context, filter AnimalFilter) ([]model.Animal, int64, error)
	GetAnimalDetail(ctx context.Context, cattleNo string) (*model.AnimalHistoryDetail, error)
}

// AnimalFilter narrows ListAnimals. Zero values mean "any".
type AnimalFilter struct {
	FarmID string
	Status model.AnimalStatus
	Skip   int64
	Limit  int64
}

// Cutoff is the instant before which a timestamp counts as stale.
func Cutoff(now time.Time, threshold time.Duration) time.Time {
	return now.Add(-threshold)
}
