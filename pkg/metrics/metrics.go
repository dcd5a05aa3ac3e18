// Package metrics contains the prometheus collectors for the registry
package metrics // import "github.com/joincivil/civil-tcr-registry/pkg/metrics"

import (
	"math/big"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const namespace = "tcr_registry"

// Result label values
const (
	ResultOk = "ok"
)

var (
	registry = prometheus.NewRegistry()

	operationCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_count",
			Help:      "Number of registry operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_ms",
			Help:      "Duration of registry operations in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"operation"},
	)

	resolutionCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenge_resolution_count",
			Help:      "Number of resolved challenges by outcome",
		},
		[]string{"outcome"},
	)

	escrowMovement = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escrow_movement_total",
			Help:      "Stake moved in and out of escrow",
		},
		[]string{"direction"},
	)

	httpRequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_request_count",
			Help:      "Number of api requests by route, code and method",
		},
		[]string{"path", "code", "method"},
	)
)

func init() {
	registry.MustRegister(
		operationCount,
		operationDuration,
		resolutionCount,
		escrowMovement,
		httpRequestCount,
		prometheus.NewGoCollector(),
	)
}

// Handler returns the http handler serving the registry collectors
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// RecordOperation counts an operation with result and observes its duration
// since start
func RecordOperation(operation string, result string, start time.Time) {
	operationCount.WithLabelValues(operation, result).Inc()
	operationDuration.WithLabelValues(operation).Observe(float64(time.Since(start).Milliseconds()))
}

// RecordResolution counts a resolved challenge by outcome
func RecordResolution(outcome string) {
	resolutionCount.WithLabelValues(outcome).Inc()
}

// RecordEscrowIn adds amount to the stake moved into escrow
func RecordEscrowIn(amount *big.Int) {
	recordEscrow("in", amount)
}

// RecordEscrowOut adds amount to the stake moved out of escrow
func RecordEscrowOut(amount *big.Int) {
	recordEscrow("out", amount)
}

// RecordRequest counts an api request
func RecordRequest(path string, code string, method string) {
	httpRequestCount.WithLabelValues(path, code, method).Inc()
}

// OperationCount returns the current count for the operation and result.
// Mostly useful in tests.
func OperationCount(operation string, result string) float64 {
	return testutil.ToFloat64(operationCount.WithLabelValues(operation, result))
}

// ResolutionCount returns the current count of resolutions with outcome
func ResolutionCount(outcome string) float64 {
	return testutil.ToFloat64(resolutionCount.WithLabelValues(outcome))
}

func recordEscrow(direction string, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	f, _ := new(big.Float).SetInt(amount).Float64()
	escrowMovement.WithLabelValues(direction).Add(f)
}
