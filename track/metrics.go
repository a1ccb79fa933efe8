package track

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tracking metrics. Registered once at package init on the default registry,
// exposed through the /metrics endpoint together with the HTTP middleware
// metrics.
var (
	// redirectsTotal counts tracking-link hits by outcome
	redirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_redirects_total",
			Help: "Total tracking link requests by outcome",
		},
		[]string{"outcome"}, // outcome: recorded, paused, bot, unknown, limited
	)

	// clicksTotal counts recorded clicks per campaign
	clicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_clicks_total",
			Help: "Total recorded clicks per campaign",
		},
		[]string{"entry"},
	)

	// conversionsTotal counts accepted conversions per campaign and status
	conversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_conversions_total",
			Help: "Total accepted conversions per campaign",
		},
		[]string{"entry", "status"},
	)

	// payoutCentsTotal accumulates conversion payouts per campaign
	payoutCentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_payout_cents_total",
			Help: "Accumulated conversion payout in cents per campaign",
		},
		[]string{"entry"},
	)

	// postbacksTotal counts postback requests by result
	postbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_postbacks_total",
			Help: "Total postback requests by result",
		},
		[]string{"result"}, // result: accepted, duplicate, orphan, rejected, invalid
	)
)

// Redirect outcomes for recordRedirect.
const (
	outcomeRecorded = "recorded"
	outcomePaused   = "paused"
	outcomeBot      = "bot"
	outcomeUnknown  = "unknown"
	outcomeLimited  = "limited"
)

func recordRedirect(outcome string) {
	redirectsTotal.WithLabelValues(outcome).Inc()
}

func recordClick(entry string) {
	clicksTotal.WithLabelValues(entry).Inc()
}

// recordConversion records an accepted conversion and its payout.
func recordConversion(entry, status string, payoutCents int64) {
	conversionsTotal.WithLabelValues(entry, status).Inc()
	payoutCentsTotal.WithLabelValues(entry).Add(float64(payoutCents))
}

// Postback results for recordPostback.
const (
	postbackAccepted  = "accepted"
	postbackDuplicate = "duplicate"
	postbackOrphan    = "orphan"
	postbackRejected  = "rejected"
	postbackInvalid   = "invalid"
)

func recordPostback(result string) {
	postbacksTotal.WithLabelValues(result).Inc()
}
