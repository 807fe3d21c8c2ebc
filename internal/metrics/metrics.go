package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "wallet"

var (
	// TxSubmitted counts broadcast transactions by asset and kind (send, cancel)
	TxSubmitted = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: namespace,
			Name:      "tx_submitted_total",
			Help:      "Transactions broadcast by the wallet",
		},
		[]string{"asset", "kind"})

	// TxSettled counts watched transactions by final outcome
	TxSettled = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: namespace,
			Name:      "tx_settled_total",
			Help:      "Watched transactions by outcome (confirmed, reverted, timeout)",
		},
		[]string{"outcome"})

	// PendingTxs is the current size of the pending pool
	PendingTxs = prom.NewGauge(
		prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_txs",
			Help:      "Transactions broadcast but not yet confirmed",
		})

	// UnlockAttempts counts unlock attempts by result (ok, wrong_password, error)
	UnlockAttempts = prom.NewCounterVec(
		prom.CounterOpts{
			Namespace: namespace,
			Name:      "unlock_attempts_total",
			Help:      "Session unlock attempts",
		},
		[]string{"result"})

	// ExternalRequests observes latency of calls to remote services
	ExternalRequests = prom.NewHistogramVec(
		prom.HistogramOpts{
			Namespace: namespace,
			Name:      "external_request_seconds",
			Help:      "Latency of requests to remote services",
			Buckets:   prom.DefBuckets,
		},
		[]string{"service", "op", "ok"})
)

func init() {
	prom.MustRegister(TxSubmitted)
	prom.MustRegister(TxSettled)
	prom.MustRegister(PendingTxs)
	prom.MustRegister(UnlockAttempts)
	prom.MustRegister(ExternalRequests)
}

// ObserveRequest records one remote call started at start
func ObserveRequest(service, op string, start time.Time, err error) {
	ok := "true"
	if err != nil {
		ok = "false"
	}
	ExternalRequests.WithLabelValues(service, op, ok).Observe(time.Since(start).Seconds())
}
