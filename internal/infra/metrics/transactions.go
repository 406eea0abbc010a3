package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		transactionsTotal,
		transactionAmountTotal,
		pgCallsLatencyMs,
	)
}

var (
	transactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_total",
			Help: "Transaction state changes by action (reserve/approve/cancel) and result.",
		},
		[]string{"action", "result"},
	)

	transactionAmountTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_amount_total",
			Help: "Sum of approved or canceled amounts in KRW.",
		},
		[]string{"action"},
	)

	pgCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pg_calls_latency_ms",
			Help:    "PG call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"pg", "op", "success"},
	)
)

func IncTransaction(action string, ok bool) {
	transactionsTotal.WithLabelValues(norm(action), result(ok)).Inc()
}

func AddTransactionAmount(action string, amount int64) {
	transactionAmountTotal.WithLabelValues(norm(action)).Add(float64(amount))
}

func ObservePgCall(pg, op string, latencyMs int64, success bool) {
	pgCallsLatencyMs.WithLabelValues(norm(pg), norm(op), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
