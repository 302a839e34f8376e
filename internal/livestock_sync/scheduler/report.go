package scheduler

import (
	"time"

	"go.uber.org/zap"
)

// RunReport summarizes one pipeline invocation. Nothing here is persisted.
type RunReport struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	// stage 1
	FarmListFailed bool
	FarmsFetched   int
	FarmsUpserted  int
	FarmsUnkeyed   int

	// stage 2
	FarmsListed         int
	FarmsIncomplete     int
	AnimalListFailures  int
	FarmsWithoutAnimals int
	AnimalsSeen         int

	// stage 3
	AnimalsSelected  int
	DetailsRefreshed int
	SubFetchFailures int
	GradesFetched    int
	GradeFailures    int
	Interrupted      bool

	StoreErrors int
}

func (r RunReport) Fields() []zap.Field {
	return []zap.Field{
		zap.String("run_id", r.RunID),
		zap.Time("started_at", r.StartedAt),
		zap.Duration("duration", r.Duration),
		zap.Bool("farm_list_failed", r.FarmListFailed),
		zap.Int("farms_fetched", r.FarmsFetched),
		zap.Int("farms_upserted", r.FarmsUpserted),
		zap.Int("farms_unkeyed", r.FarmsUnkeyed),
		zap.Int("farms_listed", r.FarmsListed),
		zap.Int("farms_incomplete", r.FarmsIncomplete),
		zap.Int("animal_list_failures", r.AnimalListFailures),
		zap.Int("farms_without_animals", r.FarmsWithoutAnimals),
		zap.Int("animals_seen", r.AnimalsSeen),
		zap.Int("animals_selected", r.AnimalsSelected),
		zap.Int("details_refreshed", r.DetailsRefreshed),
		zap.Int("sub_fetch_failures", r.SubFetchFailures),
		zap.Int("grades_fetched", r.GradesFetched),
		zap.Int("grade_failures", r.GradeFailures),
		zap.Bool("interrupted", r.Interrupted),
		zap.Int("store_errors", r.StoreErrors),
	}
}
