// Package telemetry provides the Prometheus collectors for the bot.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	UpdatesTotal    *prometheus.CounterVec
	PersistFailures prometheus.Counter
	RecordCount     prometheus.Gauge
)

// Init registers the collectors (idempotent). Code paths that touch the
// collectors nil-check them, so tests can run without calling Init.
func Init() {
	once.Do(func() {
		UpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voicecrate_updates_total",
			Help: "Handled Telegram updates by kind",
		}, []string{"kind"})
		PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
			Name: "voicecrate_persist_failures_total",
			Help: "Failed writes of the record table",
		})
		RecordCount = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "voicecrate_records",
			Help: "Current number of stored recordings",
		})
	})
}

func CountUpdate(kind string) {
	if UpdatesTotal != nil {
		UpdatesTotal.WithLabelValues(kind).Inc()
	}
}

func CountPersistFailure() {
	if PersistFailures != nil {
		PersistFailures.Inc()
	}
}

func SetRecordCount(n int) {
	if RecordCount != nil {
		RecordCount.Set(float64(n))
	}
}
