package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"livestock-sync/internal/livestock_sync/metrics"
	"livestock-sync/internal/livestock_sync/model"
	"livestock-sync/internal/livestock_sync/registry"
	"livestock-sync/internal/livestock_sync/selector"
	"livestock-sync/internal/livestock_sync/source"
)

// Sources is the set of upstream calls the pipeline makes. Every method returns a
// *source.Failure on error and never panics.
type Sources interface {
	FetchFarms(ctx context.Context) ([]model.RawFarm, error)
	FetchAnimalList(ctx context.Context, farm model.Farm, cred model.CredentialPair) ([]string, error)
	FetchHistoryOption(ctx context.Context, cattleNo string, option int) (map[string]any, error)
	FetchGrade(ctx context.Context, cattleNo string) (map[string]any, error)
}

// Worker drives the three-stage sync pipeline: farm sync, master list refresh and detail
// refresh. Stages run strictly one after another on the calling goroutine.
type Worker struct {
	Log      *zap.Logger
	Registry registry.Registry
	Sources  Sources
	Selector *selector.Selector
	Metrics  *metrics.SyncMetrics // optional
	Routing  model.CredentialRouting

	// HistoryOptions lists the trace options fetched per animal; empty means 1..9.
	HistoryOptions []int
	// Pacer spaces detail-stage requests; nil means no delay.
	Pacer *rate.Limiter
	// Schedule drives Run.
	Schedule Schedule
}

// NewPacer returns a limiter that lets one request through per interval.
func NewPacer(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Run 즉시 한 번 실행한 뒤 다음 앵커 시각마다 반복한다. ctx가 취소되면 반환한다.
func (w *Worker) Run(ctx context.Context) {
	w.RunOnce(ctx, time.Now())

	for {
		next := w.Schedule.Next(time.Now())
		sleep := time.Until(next)
		if sleep < 0 {
			sleep = 0
		}
		w.Log.Info("Next sync run scheduled", zap.Time("at", next))

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.Log.Info("Sync worker stopping")
			return
		case <-timer.C:
			w.RunOnce(ctx, time.Now())
		}
	}
}

// RunOnce executes all three stages. now is captured by the caller once and used for every
// staleness decision and timestamp written during the run.
func (w *Worker) RunOnce(ctx context.Context, now time.Time) RunReport {
	started := time.Now()
	report := RunReport{RunID: uuid.NewString(), StartedAt: now}
	log := w.Log.With(zap.String("run_id", report.RunID))

	log.Info("Sync run started", zap.Time("now", now))

	w.syncFarms(ctx, log.With(zap.String("stage", "farm_sync")), &report)
	w.refreshMasterList(ctx, log.With(zap.String("stage", "master_list")), &report)
	w.refreshDetails(ctx, log.With(zap.String("stage", "detail")), now, &report)

	report.Duration = time.Since(started)
	w.Metrics.ObserveRun(report.Duration.Seconds())
	log.Info("Sync run finished", report.Fields()...)
	return report
}

// syncFarms 농장 목록 동기화. 조회 실패 시 이 단계만 끝나고, 이후 단계는 이미 저장된
// 농장으로 진행한다.
func (w *Worker) syncFarms(ctx context.Context, log *zap.Logger, report *RunReport) {
	raws, err := w.Sources.FetchFarms(ctx)
	if err != nil {
		report.FarmListFailed = true
		w.sourceFailure(source.EndpointFarmList, err)
		log.Warn("Farm list fetch failed, continuing with stored farms", zap.Error(err))
		return
	}
	report.FarmsFetched = len(raws)
	log.Info("Farm list fetched", zap.Int("count", len(raws)))

	for _, raw := range raws {
		farm := model.NormalizeFarm(raw)
		if farm.FarmUniqueNo == "" {
			report.FarmsUnkeyed++
			w.Metrics.FarmSkipped("unkeyed")
			log.Warn("Farm record has no farm_unique_no, not stored", zap.String("farm", farm.FarmName))
			continue
		}
		if err := w.Registry.UpsertFarm(ctx, farm); err != nil {
			report.StoreErrors++
			w.Metrics.StoreError("upsert_farm")
			log.Error("Failed to upsert farm", zap.String("farm_id", farm.FarmUniqueNo), zap.Error(err))
			continue
		}
		report.FarmsUpserted++
		w.Metrics.FarmUpserted()
	}
}

// refreshMasterList 농장별 개체 목록 갱신. 상태만 다시 기록하고 last_updated는 건드리지 않는다.
func (w *Worker) refreshMasterList(ctx context.Context, log *zap.Logger, report *RunReport) {
	farms, err := w.Registry.ListFarms(ctx)
	if err != nil {
		report.StoreErrors++
		w.Metrics.StoreError("list_farms")
		log.Error("Failed to list farms, skipping master list refresh", zap.Error(err))
		return
	}
	report.FarmsListed = len(farms)

	for _, farm := range farms {
		if err := farm.Validate(); err != nil {
			report.FarmsIncomplete++
			w.Metrics.FarmSkipped("incomplete")
			log.Warn("Farm incomplete, skipped",
				zap.String("farm", farm.FarmName),
				zap.String("farm_id", farm.FarmUniqueNo),
				zap.String("owner", farm.OwnerName),
				zap.String("phone", farm.Phone),
				zap.Error(err),
			)
			continue
		}

		flog := log.With(zap.String("farm", farm.FarmName), zap.String("farm_id", farm.FarmUniqueNo))
		animals, err := w.Sources.FetchAnimalList(ctx, farm, w.Routing.CredentialsFor(farm.FarmName))
		if err != nil {
			report.AnimalListFailures++
			w.sourceFailure(source.EndpointAnimalList, err)
			flog.Warn("Animal list fetch failed, farm skipped", zap.Error(err))
			continue
		}
		if len(animals) == 0 {
			report.FarmsWithoutAnimals++
			flog.Info("Animal list is empty")
			continue
		}

		for _, cattleNo := range animals {
			if err := w.Registry.UpsertAnimalStatus(ctx, cattleNo, farm.FarmUniqueNo, model.StatusRaising); err != nil {
				report.StoreErrors++
				w.Metrics.StoreError("upsert_animal_status")
				flog.Error("Failed to upsert animal", zap.String("cattle_no", cattleNo), zap.Error(err))
				continue
			}
			report.AnimalsSeen++
			w.Metrics.AnimalSeen()
		}
		flog.Info("Animal list refreshed", zap.Int("count", len(animals)))
	}
}

// refreshDetails 갱신 대상 배치의 이력 상세를 오래된 순으로 갱신한다.
func (w *Worker) refreshDetails(ctx context.Context, log *zap.Logger, now time.Time, report *RunReport) {
	batch, err := w.Selector.Select(ctx, now)
	if err != nil {
		report.StoreErrors++
		w.Metrics.StoreError("select_stale_animals")
		log.Error("Failed to select stale animals, skipping detail refresh", zap.Error(err))
		return
	}
	report.AnimalsSelected = len(batch)
	w.Metrics.BatchSelected(len(batch))
	log.Info("Detail refresh batch selected",
		zap.Int("count", len(batch)),
		zap.Int("limit", w.Selector.BatchLimit),
		zap.Duration("threshold", w.Selector.Threshold),
	)

	for i, animal := range batch {
		alog := log.With(zap.String("cattle_no", animal.CattleNo), zap.Int("index", i+1), zap.Int("total", len(batch)))
		if err := w.refreshAnimal(ctx, alog, animal, now, report); err != nil {
			report.Interrupted = true
			alog.Warn("Detail refresh interrupted", zap.Error(err))
			return
		}
	}
}

// refreshAnimal fetches every history option independently and writes whatever arrived.
// The only error it returns is context cancellation while waiting on the pacer.
func (w *Worker) refreshAnimal(ctx context.Context, log *zap.Logger, animal model.Animal, now time.Time, report *RunReport) error {
	history := model.HistoryBundle{}
	for _, opt := range w.historyOptions() {
		if err := w.pace(ctx); err != nil {
			return err
		}
		payload, err := w.Sources.FetchHistoryOption(ctx, animal.CattleNo, opt)
		if err != nil {
			report.SubFetchFailures++
			w.sourceFailure(source.EndpointHistory, err)
			log.Warn("History option fetch failed, omitted from bundle", zap.Int("option", opt), zap.Error(err))
			continue
		}
		history[model.OptionKey(opt)] = payload
	}

	var grade map[string]any
	if animal.Status == model.StatusSlaughtered {
		if err := w.pace(ctx); err != nil {
			return err
		}
		g, err := w.Sources.FetchGrade(ctx, animal.CattleNo)
		if err != nil {
			report.GradeFailures++
			w.sourceFailure(source.EndpointGrade, err)
			log.Warn("Grade fetch failed", zap.Error(err))
		} else {
			report.GradesFetched++
			grade = g
		}
	}

	detail := model.AnimalHistoryDetail{
		CattleNo:    animal.CattleNo,
		History:     history,
		GradeResult: grade,
		Status:      animal.Status,
		LastUpdated: now,
	}
	if err := w.Registry.UpsertAnimalDetail(ctx, detail); err != nil {
		report.StoreErrors++
		w.Metrics.StoreError("upsert_animal_detail")
		log.Error("Failed to upsert history detail", zap.Error(err))
	} else {
		report.DetailsRefreshed++
		w.Metrics.DetailRefreshed()
	}

	// stamped after every attempt, however many options arrived
	if err := w.Registry.TouchAnimalTimestamp(ctx, animal.CattleNo, now); err != nil {
		report.StoreErrors++
		w.Metrics.StoreError("touch_animal_timestamp")
		log.Error("Failed to stamp animal", zap.Error(err))
	}

	log.Debug("Animal detail refreshed", zap.Int("options", len(history)), zap.Bool("grade", grade != nil))
	return nil
}

func (w *Worker) historyOptions() []int {
	if len(w.HistoryOptions) == 0 {
		return model.AllHistoryOptions()
	}
	return w.HistoryOptions
}

func (w *Worker) pace(ctx context.Context) error {
	if w.Pacer == nil {
		return ctx.Err()
	}
	return w.Pacer.Wait(ctx)
}

func (w *Worker) sourceFailure(endpoint string, err error) {
	w.Metrics.SourceFailure(endpoint, string(source.KindOf(err)))
}
