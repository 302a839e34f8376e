package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "livestock_sync"

// SyncMetrics counts pipeline outcomes. A nil *SyncMetrics is valid and records nothing.
type SyncMetrics struct {
	Runs             prometheus.Counter
	RunDuration      prometheus.Histogram
	FarmsUpserted    prometheus.Counter
	FarmsSkipped     *prometheus.CounterVec // reason
	AnimalsSeen      prometheus.Counter
	AnimalsSelected  prometheus.Gauge
	DetailsRefreshed prometheus.Counter
	SourceFailures   *prometheus.CounterVec // endpoint, kind
	StoreErrors      *prometheus.CounterVec // operation
}

// NewSyncMetrics creates the collectors and registers them with reg.
func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	m := &SyncMetrics{
		Runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "runs_total",
			Help: "Completed pipeline runs.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "run_duration_seconds",
			Help:    "Wall time of a pipeline run.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		}),
		FarmsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "farms_upserted_total",
			Help: "Farm records written during farm sync.",
		}),
		FarmsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "farms_skipped_total",
			Help: "Farms left out of processing, by reason.",
		}, []string{"reason"}),
		AnimalsSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "animals_seen_total",
			Help: "Animal sightings recorded from farm animal lists.",
		}),
		AnimalsSelected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "animals_selected",
			Help: "Size of the last detail refresh batch.",
		}),
		DetailsRefreshed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "details_refreshed_total",
			Help: "Animals whose history detail was written.",
		}),
		SourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "source_failures_total",
			Help: "Upstream calls that returned no data.",
		}, []string{"endpoint", "kind"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "store_errors_total",
			Help: "Registry operations that failed.",
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{
		m.Runs, m.RunDuration, m.FarmsUpserted, m.FarmsSkipped, m.AnimalsSeen,
		m.AnimalsSelected, m.DetailsRefreshed, m.SourceFailures, m.StoreErrors,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *SyncMetrics) ObserveRun(seconds float64) {
	if m == nil {
		return
	}
	m.Runs.Inc()
	m.RunDuration.Observe(seconds)
}

func (m *SyncMetrics) FarmUpserted() {
	if m != nil {
		m.FarmsUpserted.Inc()
	}
}

func (m *SyncMetrics) FarmSkipped(reason string) {
	if m != nil {
		m.FarmsSkipped.WithLabelValues(reason).Inc()
	}
}

func (m *SyncMetrics) AnimalSeen() {
	if m != nil {
		m.AnimalsSeen.Inc()
	}
}

func (m *SyncMetrics) BatchSelected(n int) {
	if m != nil {
		m.AnimalsSelected.Set(float64(n))
	}
}

func (m *SyncMetrics) DetailRefreshed() {
	if m != nil {
		m.DetailsRefreshed.Inc()
	}
}

func (m *SyncMetrics) SourceFailure(endpoint, kind string) {
	if m != nil {
		m.SourceFailures.WithLabelValues(endpoint, kind).Inc()
	}
}

func (m *SyncMetrics) StoreError(operation string) {
	if m != nil {
		m.StoreErrors.WithLabelValues(operation).Inc()
	}
}
