package sqlog

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsStatementLogger is a StatementLogger publishing execution metrics
// to Prometheus: duration histogram per statement kind and outcome, failure
// counter and an in-flight gauge. Safe for concurrent use, can be shared
// between sessions.
type MetricsStatementLogger struct {
	durations *prometheus.HistogramVec
	failures  *prometheus.CounterVec
	inFlight  prometheus.Gauge
}

func NewMetricsStatementLogger(reg prometheus.Registerer) (*MetricsStatementLogger, error) {
	m := &MetricsStatementLogger{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sql_statement_duration_seconds",
			Help:    "Histogram of statement execution durations.",
			Buckets: []float64{.001, .003, .005, .01, .025, .05, .1, .2, .3, .4, .5, .75, 1, 2, 3, 5, 10, 30},
		}, []string{"kind", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sql_statement_failures_total",
			Help: "Counter of failed statement executions.",
		}, []string{"kind"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sql_statements_in_flight",
			Help: "Gauge of statements currently executing.",
		}),
	}

	for _, c := range []prometheus.Collector{m.durations, m.failures, m.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *MetricsStatementLogger) LogBeforeExecution(sc *StatementContext) {
	m.inFlight.Inc()
}

func (m *MetricsStatementLogger) LogAfterExecution(sc *StatementContext) {
	m.inFlight.Dec()
	m.durations.WithLabelValues(sc.Kind().String(), "ok").Observe(sc.ElapsedTime().Seconds())
}

func (m *MetricsStatementLogger) LogException(sc *StatementContext, err error) {
	m.inFlight.Dec()
	m.durations.WithLabelValues(sc.Kind().String(), "failed").Observe(sc.ElapsedTime().Seconds())
	m.failures.WithLabelValues(sc.Kind().String()).Inc()
}
