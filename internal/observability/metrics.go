package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	loginPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "practice_service",
		Subsystem: "persistence",
		Name:      "last_login_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent login event persisted to Postgres.",
	})
	practicePersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "practice_service",
		Subsystem: "persistence",
		Name:      "last_practice_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent practice record persisted to Postgres.",
	})
	degradedReadCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "practice_service",
		Subsystem: "api",
		Name:      "degraded_reads_total",
		Help:      "Statistics reads served as zero-valued results after a store failure.",
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(loginPersistGauge, practicePersistGauge, degradedReadCounter)
}

// RecordLoginPersisted updates the login persistence watermark gauge.
func RecordLoginPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	loginPersistGauge.Set(float64(ts.Unix()))
}

// RecordPracticePersisted updates the practice persistence watermark gauge.
func RecordPracticePersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	practicePersistGauge.Set(float64(ts.Unix()))
}

// RecordDegradedRead counts a statistics read that fell back to zero values.
func RecordDegradedRead(operation string) {
	degradedReadCounter.WithLabelValues(operation).Inc()
}
