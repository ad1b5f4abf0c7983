package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric this service exports.
const Namespace = "equipreg"

// Result label values for registry operations besides the error kinds.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var registryOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "registry_operations_total",
		Help:      "Registry operations by registry, operation and result",
	},
	[]string{"registry", "op", "result"},
)

// ObserveOperation counts one registry call.
func ObserveOperation(registry, op, result string) {
	registryOperations.WithLabelValues(registry, op, result).Inc()
}
