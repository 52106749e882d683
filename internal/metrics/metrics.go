package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stars_bot"

var (
	ReferralCredits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "referral_credits_total",
		Help:      "Referral rewards credited to referrers.",
	})

	Withdrawals = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "withdrawal",
		Name:      "requests_total",
		Help:      "Withdrawal request events by outcome.",
	}, []string{"outcome"})

	Draws = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "lottery",
		Name:      "draws_total",
		Help:      "Resolved draws by result.",
	}, []string{"result"})

	Giveaways = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "lottery",
		Name:      "giveaways_total",
		Help:      "Giveaway lifecycle events.",
	}, []string{"event"})

	ExpiredAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "lottery",
		Name:      "expired_attempts_total",
		Help:      "Attempts resolved as lost by the sweeper.",
	})

	GuardRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "guard",
		Name:      "rejections_total",
		Help:      "Operations dropped because the key was already held.",
	}, []string{"scope"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notify",
		Name:      "messages_total",
		Help:      "Outbound messages by status.",
	}, []string{"status"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Admin API requests by route and status code.",
	}, []string{"route", "code"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
