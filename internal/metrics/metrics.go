package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	GatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echopub_gateway_requests_total",
			Help: "Total number of payment gateway calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	GatewayLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "echopub_gateway_request_duration_seconds",
			Help:    "Payment gateway call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	GatewayTokenRefresh = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echopub_gateway_token_refresh_total",
			Help: "Total number of gateway access token refreshes",
		},
		[]string{"outcome"},
	)

	PollOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echopub_deposit_poll_outcomes_total",
			Help: "Deposit status poll results: confirmed, failed or timeout",
		},
		[]string{"outcome"},
	)

	Transactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echopub_transactions_total",
			Help: "Transaction state changes by type and status",
		},
		[]string{"type", "status"},
	)

	Publications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echopub_publication_events_total",
			Help: "Publication workflow events",
		},
		[]string{"event"},
	)

	ProofChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "echopub_proof_checks_total",
			Help: "Proof verification results",
		},
		[]string{"result"},
	)

	ActivitiesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "echopub_activities_dropped_total",
			Help: "Activity records dropped because the buffer was full or the sink failed",
		},
	)

	CampaignsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "echopub_campaigns_auto_completed_total",
			Help: "Campaigns completed by the end-date sweep",
		},
	)

	ResponseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)
)

func init() {
	prometheus.MustRegister(GatewayRequests)
	prometheus.MustRegister(GatewayLatency)
	prometheus.MustRegister(GatewayTokenRefresh)
	prometheus.MustRegister(PollOutcomes)
	prometheus.MustRegister(Transactions)
	prometheus.MustRegister(Publications)
	prometheus.MustRegister(ProofChecks)
	prometheus.MustRegister(ActivitiesDropped)
	prometheus.MustRegister(CampaignsCompleted)
	prometheus.MustRegister(ResponseTime)
}
