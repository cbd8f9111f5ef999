package fdbscan

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "fdbscan"
	subsystem = "format"

	opScan    = "s"
	opInspect = "i"
)

// All Prometheus collectors from this module
var (
	CallsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "calls_total",
		Help:      "Number of offloaded (s)can/(i)nspect calls",
	}, []string{"op"})

	ErrorsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "errors_total",
		Help:      "Number of offloaded (s)can/(i)nspect errors",
	}, []string{"op"})

	BytesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "bytes_total",
		Help:      "Size of offloaded (req)uests and (rep)lies",
	}, []string{"dir"})

	RowsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rows_total",
		Help:      "Number of rows returned by offloaded scans",
	})

	CallsHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "calls_seconds",
		Help:      "Response time of offloaded (s)can/(i)nspect calls",
	}, []string{"op"})
)

//goland:noinspection GoUnusedGlobalVariable
var Metrics = []prometheus.Collector{
	CallsCounter,
	ErrorsCounter,
	BytesCounter,
	RowsCounter,
	CallsHistogram,
}

// Замер одного вызова, ничего не делает при выключенных метриках
type measure struct {
	on    bool
	op    string
	start time.Time
}

func (o options) measure(op string) measure {
	if !o.metrics {
		return measure{}
	}

	CallsCounter.WithLabelValues(op).Inc()
	return measure{on: true, op: op, start: time.Now()}
}

func (m measure) done(err error, req, rep int, rows int64) {
	if !m.on {
		return
	}

	CallsHistogram.WithLabelValues(m.op).Observe(time.Since(m.start).Seconds())
	BytesCounter.WithLabelValues("req").Add(float64(req))
	BytesCounter.WithLabelValues("rep").Add(float64(rep))
	RowsCounter.Add(float64(rows))

	if err != nil {
		ErrorsCounter.WithLabelValues(m.op).Inc()
	}
}
