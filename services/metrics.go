package services

import (
	"github.com/prometheus/client_golang/prometheus"

	"zealAPI/internal/sweep"
)

var (
	sweepRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_sweep_runs_total",
			Help: "Lifecycle sweep runs by result",
		},
		[]string{"result"},
	)
	sweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lifecycle_sweep_duration_seconds",
			Help:    "Duration of lifecycle sweep runs",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)
	challengesClosed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "challenges_closed_total",
			Help: "Challenges moved from Live to Completed",
		},
	)
	badgesAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "challenge_badges_awarded_total",
			Help: "Badges granted to challenge participants",
		},
	)
	levelChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "user_level_changes_total",
			Help: "Users whose level tier changed during a sweep",
		},
	)
	sweepItemFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_sweep_item_failures_total",
			Help: "Per-item failures skipped by the sweep",
		},
		[]string{"kind"},
	)
	pointsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "challenge_points_awarded_total",
			Help: "Points credited to users by challenge type",
		},
		[]string{"challenge_type"},
	)
	notificationsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Notifications handed to the push provider by result",
		},
		[]string{"result"},
	)
)

// RegisterMetrics registers the service collectors. Call it once from main.go.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		sweepRuns,
		sweepDuration,
		challengesClosed,
		badgesAwarded,
		levelChanges,
		sweepItemFailures,
		pointsAwarded,
		notificationsDispatched,
	)
}

func observeSweep(report *sweep.Report, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	sweepRuns.WithLabelValues(result).Inc()

	if report == nil {
		return
	}
	sweepDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	challengesClosed.Add(float64(len(report.ChallengesClosed)))
	badgesAwarded.Add(float64(report.BadgesAwarded))
	levelChanges.Add(float64(report.LevelChanges))
	for _, f := range report.Failures {
		sweepItemFailures.WithLabelValues(string(f.Kind)).Inc()
	}
}
