package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Store-related Prometheus metrics. Standalone package to avoid import cycles
// between the pg store and anything that exposes /metrics.

var (
	StoreOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_store_ops_total",
		Help: "Operaciones del store de identidad por resultado",
	}, []string{"op", "result"}) // result: ok|error

	StoreOpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "identity_store_op_duration_seconds",
		Help:    "Latencia de las operaciones del store de identidad",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)

// RegisterStore registers the store metrics on the given registry (or default if nil).
func RegisterStore(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{StoreOpsTotal, StoreOpDuration} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// ObserveStoreOp registra el resultado y la duración de una operación del store.
func ObserveStoreOp(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreOpsTotal.WithLabelValues(op, result).Inc()
	StoreOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
