package adapter

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eigerco/lmdbdown/pkg/log"
)

const (
	resultOK         = "ok"
	resultError      = "error"
	resultFlushError = "flush_error"
)

type metrics struct {
	commits   *prometheus.CounterVec
	ops       *prometheus.CounterVec
	aborts    prometheus.Counter
	sentinels prometheus.Counter
	iterators prometheus.Gauge
}

// newMetrics builds the store collectors and registers them on reg when it is not nil.
// Stores sharing a registerer share collectors.
func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		commits: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lmdbdown",
			Name:      "commits_total",
			Help:      "Write transactions by outcome.",
		}, []string{"result"})),
		ops: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lmdbdown",
			Name:      "operations_total",
			Help:      "Operations applied inside write transactions.",
		}, []string{"type"})),
		aborts: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lmdbdown",
			Name:      "aborted_transactions_total",
			Help:      "Write transactions aborted after a failure.",
		})),
		sentinels: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lmdbdown",
			Name:      "synthesized_bounds_total",
			Help:      "Range bounds that named an absent key.",
		})),
		iterators: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lmdbdown",
			Name:      "open_iterators",
			Help:      "Iterators currently pinning a transaction.",
		})),
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		log.Store.Warn().Err(err).Msg("metrics registration failed")
	}
	return c
}
