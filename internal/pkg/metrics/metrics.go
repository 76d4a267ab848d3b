// Package metrics owns the process Prometheus registry and the portal's
// domain counters.
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hris_portal"

type Metrics struct {
	registry *prometheus.Registry

	CheckIns       *prometheus.CounterVec
	CheckOuts      prometheus.Counter
	DailyReset     *prometheus.CounterVec
	LeaveDecisions *prometheus.CounterVec
	LeaveRecalc    *prometheus.CounterVec
	PayrollRuns    *prometheus.CounterVec
	JobDuration    *prometheus.HistogramVec
}

// New builds a registry with the Go and process collectors plus the domain
// counters registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		CheckIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attendance",
			Name:      "check_ins_total",
			Help:      "Successful check-ins by resulting status.",
		}, []string{"status"}),
		CheckOuts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attendance",
			Name:      "check_outs_total",
			Help:      "Successful check-outs.",
		}),
		DailyReset: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attendance",
			Name:      "daily_reset_employees_total",
			Help:      "Employees visited by the daily reset, by outcome.",
		}, []string{"result"}),
		LeaveDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leave",
			Name:      "decisions_total",
			Help:      "Leave request decisions by status.",
		}, []string{"status"}),
		LeaveRecalc: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leave",
			Name:      "balance_recalculations_total",
			Help:      "Leave balance buckets visited by recalculation, by outcome.",
		}, []string{"result"}),
		PayrollRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payroll",
			Name:      "runs_total",
			Help:      "Payroll calculations by output format.",
		}, []string{"format"}),
		JobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Scheduled job run time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
	}

	reg.MustRegister(m.CheckIns, m.CheckOuts, m.DailyReset, m.LeaveDecisions, m.LeaveRecalc, m.PayrollRuns, m.JobDuration)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      errorLogger{},
		ErrorHandling: promhttp.ContinueOnError,
		Registry:      m.registry,
	})
}

// errorLogger implements promhttp.Logger on top of slog.
type errorLogger struct{}

func (errorLogger) Println(v ...interface{}) {
	slog.Error("metrics handler error", "detail", v)
}
