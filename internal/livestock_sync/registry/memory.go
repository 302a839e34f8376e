package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"livestock-sync/internal/livestock_sync/model"
)

// MemoryRegistry keeps entities in process memory with the same ordering rules as
// MongoRegistry. It backs tests and local dry runs.
type MemoryRegistry struct {
	mu      sync.RWMutex
	farms   map[string]model.Farm
	animals map[string]model.Animal
	details map[string]model.AnimalHistoryDetail
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		farms:   make(map[string]model.Farm),
		animals: make(map[string]model.Animal),
		details: make(map[string]model.AnimalHistoryDetail),
	}
}

func (r *MemoryRegistry) UpsertFarm(_ context.Context, farm model.Farm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.farms[farm.FarmUniqueNo] = farm
	return nil
}

func (r *MemoryRegistry) ListFarms(_ context.Context) ([]model.Farm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Farm, 0, len(r.farms))
	for _, f := range r.farms {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FarmUniqueNo < out[j].FarmUniqueNo })
	return out, nil
}

func (r *MemoryRegistry) UpsertAnimalStatus(_ context.Context, cattleNo, farmID string, status model.AnimalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.animals[cattleNo]
	a.CattleNo = cattleNo
	a.FarmID = farmID
	a.Status = status
	r.animals[cattleNo] = a
	return nil
}

func (r *MemoryRegistry) UpsertAnimalDetail(_ context.Context, detail model.AnimalHistoryDetail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case detail.Status != model.StatusSlaughtered:
		detail.GradeResult = nil
	case detail.GradeResult == nil:
		detail.GradeResult = r.details[detail.CattleNo].GradeResult
	}
	r.details[detail.CattleNo] = detail
	return nil
}

// TouchAnimalTimestamp is a no-op for unknown animals, matching an update without upsert.
func (r *MemoryRegistry) TouchAnimalTimestamp(_ context.Context, cattleNo string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.animals[cattleNo]
	if !ok {
		return nil
	}
	a.LastUpdated = &ts
	r.animals[cattleNo] = a
	return nil
}

func (r *MemoryRegistry) SelectStaleAnimals(_ context.Context, threshold time.Duration, limit int, now time.Time) ([]model.Animal, error) {
	if limit <= 0 {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := Cutoff(now, threshold)
	var due []model.Animal
	for _, a := range r.animals {
		if a.LastUpdated == nil || a.LastUpdated.Before(cutoff) {
			due = append(due, a)
		}
	}
	SortByStaleness(due)
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *MemoryRegistry) ListAnimals(_ context.Context, filter AnimalFilter) ([]model.Animal, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []model.Animal
	for _, a := range r.animals {
		if filter.FarmID != "" && a.FarmID != filter.FarmID {
			continue
		}
		if filter.Status != model.StatusUnknown && a.Status != filter.Status {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CattleNo < matched[j].CattleNo })

	total := int64(len(matched))
	start := min(filter.Skip, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return matched[start:end], total, nil
}

func (r *MemoryRegistry) GetAnimalDetail(_ context.Context, cattleNo string) (*model.AnimalHistoryDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.details[cattleNo]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

// Animal returns a copy of one animal record.
func (r *MemoryRegistry) Animal(cattleNo string) (model.Animal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.animals[cattleNo]
	return a, ok
}

// SortByStaleness orders animals by last_updated ascending, missing timestamps first, then
// by cattleNo.
func SortByStaleness(animals []model.Animal) {
	sort.SliceStable(animals, func(i, j int) bool {
		a, b := animals[i].LastUpdated, animals[j].LastUpdated
		switch {
		case a == nil && b == nil:
			return animals[i].CattleNo < animals[j].CattleNo
		case a == nil:
			return true
		case b == nil:
			return false
		case !a.Equal(*b):
			return a.Before(*b)
		default:
			return animals[i].CattleNo < animals[j].CattleNo
		}
	})
}
