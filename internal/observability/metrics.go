package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "lockout_service",
		Subsystem: "persistence",
		Name:      "last_activity_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity write to Postgres.",
	})
	activitiesActivatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lockout_service",
		Subsystem: "lifecycle",
		Name:      "activities_activated_total",
		Help:      "Number of activities that entered the active (blocked) state.",
	})
	activitiesFinalizedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "lockout_service",
		Subsystem: "lifecycle",
		Name:      "activities_finalized_total",
		Help:      "Number of activities that reached the terminal finalized state.",
	})
	rupturesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lockout_service",
		Subsystem: "lifecycle",
		Name:      "ruptures_recorded_total",
		Help:      "Number of forced removals recorded, labeled by subject type.",
	}, []string{"subject_type"})
	lockerSyncFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lockout_service",
		Subsystem: "lockers",
		Name:      "registry_sync_failures_total",
		Help:      "Best-effort locker registry calls that failed and need out-of-band reconciliation.",
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(
		activityPersistGauge,
		activitiesActivatedCounter,
		activitiesFinalizedCounter,
		rupturesCounter,
		lockerSyncFailureCounter,
	)
}

// RecordActivityPersisted updates the persistence watermark gauge.
func RecordActivityPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityPersistGauge.Set(float64(ts.Unix()))
}

// RecordActivityActivated counts an activity entering the active state.
func RecordActivityActivated() {
	activitiesActivatedCounter.Inc()
}

// RecordActivityFinalized counts an activity reaching its terminal state.
func RecordActivityFinalized() {
	activitiesFinalizedCounter.Inc()
}

// RecordRupture counts a forced removal by subject type.
func RecordRupture(subjectType string) {
	rupturesCounter.WithLabelValues(subjectType).Inc()
}

// RecordLockerSyncFailure counts a failed best-effort locker registry call.
func RecordLockerSyncFailure(operation string) {
	lockerSyncFailureCounter.WithLabelValues(operation).Inc()
}
