// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the moral duel platform.
var (
	// Counters.
	CasesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cases_created_total",
			Help: "Total number of cases created",
		},
		[]string{"origin"},
	)

	CasesClosedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cases_closed_total",
			Help: "Total number of cases closed",
		},
		[]string{"winning_side"},
	)

	VotesCastTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votes_cast_total",
			Help: "Total number of votes cast",
		},
		[]string{"side"},
	)

	ArgumentsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arguments_submitted_total",
			Help: "Total number of arguments submitted",
		},
	)

	CommitmentsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commitments_submitted_total",
			Help: "Total verdict commitments submitted to the ledger",
		},
		[]string{"status"},
	)

	CommitmentIntegrityFaultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commitment_integrity_faults_total",
			Help: "Total commitments whose on-ledger hash diverged from the stored verdict",
		},
	)

	RewardsSettledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_settled_total",
			Help: "Total reward rows created at settlement",
		},
		[]string{"category"},
	)

	RewardsReconciledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_reconciled_total",
			Help: "Total reward payouts resolved by the reconciler",
		},
		[]string{"outcome"},
	)

	BadgesAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "badges_awarded_total",
			Help: "Total number of badges awarded",
		},
		[]string{"badge"},
	)

	SchedulerJobsRunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_jobs_run_total",
			Help: "Total scheduler job executions",
		},
		[]string{"job", "status"},
	)

	// Gauges.
	ActiveCases = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_cases",
			Help: "Current number of cases open for voting",
		},
	)

	PendingRewards = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_rewards",
			Help: "Current number of unclaimed reward rows",
		},
	)

	LeaderboardComputedAt = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "leaderboard_computed_at_timestamp",
			Help: "Unix timestamp of the last leaderboard snapshot per period",
		},
		[]string{"period"},
	)

	// Histograms.
	SettlementDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "settlement_duration_seconds",
			Help:    "Time taken to settle one closed case",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)

	ReconcilerBatchDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reconciler_batch_duration_seconds",
			Help:    "Time taken to reconcile one payout batch",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
	)

	LedgerCallDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_call_duration_seconds",
			Help:    "Ledger RPC round-trip time",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"method"},
	)

	CaseParticipants = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "case_participants",
			Help:    "Participants per closed case",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1 to ~2048
		},
	)
)

// RecordCaseCreated records a newly created case.
func RecordCaseCreated(origin string) {
	CasesCreatedTotal.WithLabelValues(origin).Inc()
}

// RecordCaseClosed records a closed case and its turnout.
func RecordCaseClosed(winningSide string, participants int) {
	CasesClosedTotal.WithLabelValues(winningSide).Inc()
	CaseParticipants.Observe(float64(participants))
}

// RecordVote records a cast vote.
func RecordVote(side string) {
	VotesCastTotal.WithLabelValues(side).Inc()
}

// RecordCommitment records a commitment submission outcome.
func RecordCommitment(status string) {
	CommitmentsSubmittedTotal.WithLabelValues(status).Inc()
}

// RecordRewardSettled records one settled reward row.
func RecordRewardSettled(category string) {
	RewardsSettledTotal.WithLabelValues(category).Inc()
}

// RecordRewardReconciled records one resolved payout.
func RecordRewardReconciled(outcome string) {
	RewardsReconciledTotal.WithLabelValues(outcome).Inc()
}

// RecordBadgeAwarded records an awarded badge.
func RecordBadgeAwarded(badge string) {
	BadgesAwardedTotal.WithLabelValues(badge).Inc()
}

// RecordJobRun records a scheduler job execution.
func RecordJobRun(job, status string) {
	SchedulerJobsRunTotal.WithLabelValues(job, status).Inc()
}
