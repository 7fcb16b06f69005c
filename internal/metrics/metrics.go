package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for monitoring the verification workflow
var (
	VerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Total number of payment verification requests by outcome",
		},
		[]string{"outcome"},
	)

	PollAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_verification_poll_attempts",
			Help:    "Number of ledger status polls per verification",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	PaymentRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_requests_total",
			Help: "Total number of payment request QR generations by status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(VerificationsTotal, PollAttempts, PaymentRequestsTotal)
}
