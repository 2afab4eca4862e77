package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	ReconcileRunCounter     *prometheus.CounterVec
	ReconcileRunTimeSummary *prometheus.SummaryVec
	ReconcileActionCounter  *prometheus.CounterVec

	BMCFetchCounter        *prometheus.CounterVec
	BMCFetchRunTimeSummary *prometheus.SummaryVec

	HistoryEntriesCounter *prometheus.CounterVec
)

func init() {
	ReconcileRunCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beryll_reconcile_runs_total",
			Help: "A counter metric to measure the total count of reconciliation runs, by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	ReconcileRunTimeSummary = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "beryll_reconcile_run_duration_seconds",
			Help: "A summary metric to measure the time spent in one reconciliation run",
		},
		[]string{"mode", "outcome"},
	)

	ReconcileActionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beryll_reconcile_actions_total",
			Help: "A counter metric to measure the plan actions applied by reconciliation runs",
		},
		[]string{"mode", "action"},
	)

	BMCFetchCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beryll_bmc_fetch_total",
			Help: "A counter metric to measure BMC inventory queries, successful and failed",
		},
		[]string{"driver", "outcome"},
	)

	BMCFetchRunTimeSummary = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "beryll_bmc_fetch_duration_seconds",
			Help: "A summary metric to measure the time spent querying a BMC inventory",
		},
		[]string{"driver", "outcome"},
	)

	HistoryEntriesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beryll_component_history_entries_total",
			Help: "A counter metric to measure component history entries written, by action",
		},
		[]string{"action"},
	)
}

// Outcome maps an error to the outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// ObserveReconcileRun records one reconciliation run.
func ObserveReconcileRun(mode string, err error, elapsed time.Duration) {
	outcome := Outcome(err)
	ReconcileRunCounter.WithLabelValues(mode, outcome).Inc()
	ReconcileRunTimeSummary.WithLabelValues(mode, outcome).Observe(elapsed.Seconds())
}

// ObserveBMCFetch records one BMC inventory query.
func ObserveBMCFetch(driver string, err error, elapsed time.Duration) {
	outcome := Outcome(err)
	BMCFetchCounter.WithLabelValues(driver, outcome).Inc()
	BMCFetchRunTimeSummary.WithLabelValues(driver, outcome).Observe(elapsed.Seconds())
}

// Handler exposes the default registry on a fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
