// Package metrics exposes the Prometheus collectors recorded by the budget
// services and the HTTP middleware.
package metrics

import (
	"time"

	"pennywise/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Summary kinds observed by SummaryDuration.
const (
	KindBudget      = "budget"
	KindBudgetTotal = "budget_summary"
	KindGroup       = "group"
	KindGroupTotal  = "groups_summary"
	KindPlan        = "plan"
)

// Recorder holds every collector. A nil *Recorder records nothing.
type Recorder struct {
	groupsSummarized prometheus.Counter
	budgetsGenerated prometheus.Counter
	amountsUpdated   prometheus.Counter
	periodConflicts  *prometheus.CounterVec
	statuses         *prometheus.CounterVec
	summaryDuration  *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers the collectors with reg. The API server passes
// prometheus.DefaultRegisterer; tests pass a fresh registry.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		groupsSummarized: factory.NewCounter(prometheus.CounterOpts{
			Name: "budget_groups_summarized_total",
			Help: "Total number of budget group summaries computed",
		}),
		budgetsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "budgets_generated_total",
			Help: "Total number of budgets created by group generation",
		}),
		amountsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "budget_amounts_updated_total",
			Help: "Total number of budget amounts changed by bulk updates",
		}),
		periodConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "budget_period_conflicts_total",
			Help: "Total number of writes rejected for overlapping periods",
		}, []string{"resource"}),
		statuses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "budget_status_total",
			Help: "Budget classifications produced, by status",
		}, []string{"status"}),
		summaryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "budget_summary_duration_seconds",
			Help:    "Time spent computing budget summaries",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (r *Recorder) GroupSummarized() {
	if r == nil {
		return
	}
	r.groupsSummarized.Inc()
}

func (r *Recorder) BudgetsGenerated(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.budgetsGenerated.Add(float64(n))
}

func (r *Recorder) AmountsUpdated(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.amountsUpdated.Add(float64(n))
}

// PeriodConflict counts a rejected write; resource is "budget" or
// "budget_group".
func (r *Recorder) PeriodConflict(resource string) {
	if r == nil {
		return
	}
	r.periodConflicts.WithLabelValues(resource).Inc()
}

func (r *Recorder) Status(status models.BudgetStatus) {
	if r == nil {
		return
	}
	r.statuses.WithLabelValues(string(status)).Inc()
}

// ObserveSummary records how long a summary of the given kind took since
// start.
func (r *Recorder) ObserveSummary(kind string, start time.Time) {
	if r == nil {
		return
	}
	r.summaryDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, status).Inc()
	r.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
