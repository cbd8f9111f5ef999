package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "fdbscan"
	subsystem = "db"

	opConnect = "c"
	opRead    = "r"
	opWrite   = "w"
	opClear   = "x"
)

// All Prometheus collectors from this module
var (
	OpsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ops_total",
		Help:      "Number of (r)ead/(w)rite physical transactions, including retries",
	}, []string{"op"})

	CallsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "calls_total",
		Help:      "Number of (c)onnect/(r)ead/(w)rite/(x)clear method calls",
	}, []string{"op"})

	ErrorsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "errors_total",
		Help:      "Number of (c)onnect/(r)ead/(w)rite/(x)clear errors",
	}, []string{"op"})

	CallsHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "calls_seconds",
		Help:      "Response time of (c)onnect/(r)ead/(w)rite/(x)clear method calls",
	}, []string{"op"})
)

//goland:noinspection GoUnusedGlobalVariable
var Metrics = []prometheus.Collector{
	OpsCounter,
	CallsCounter,
	ErrorsCounter,
	CallsHistogram,
}

func (o options) count(op string) {
	if o.WithMetrics {
		OpsCounter.WithLabelValues(op).Inc()
	}
}

func (o options) measure(op string, start time.Time, err error) {
	if !o.WithMetrics {
		return
	}

	CallsCounter.WithLabelValues(op).Inc()
	CallsHistogram.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		ErrorsCounter.WithLabelValues(op).Inc()
	}
}
