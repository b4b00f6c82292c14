package services

import "github.com/prometheus/client_golang/prometheus"

// Response intake outcomes used as the "outcome" label.
const (
	outcomeSubmitted = "submitted"
	outcomeDeclined  = "declined"
	outcomeRejected  = "rejected"
)

var (
	// responsesTotal counts intake attempts by outcome.
	responsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_responses_total",
			Help: "Supplier response intake attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// requestsExpired counts requests written back as expired by the sweeper.
	requestsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quote_requests_expired_total",
			Help: "Quote requests whose expired status was persisted.",
		},
	)

	// requestsCompleted counts automatic and manual completions.
	requestsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_requests_completed_total",
			Help: "Quote requests moved to completed, by trigger.",
		},
		[]string{"trigger"},
	)

	// notificationsSent counts invitation notifications handed to the notifier.
	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_invitation_notifications_total",
			Help: "Invitation notifications by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(responsesTotal, requestsExpired, requestsCompleted, notificationsSent)
}
