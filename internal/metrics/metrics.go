package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vipgate",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	tokensRedeemed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vipgate",
			Name:      "tokens_redeemed_total",
			Help:      "Successfully redeemed invitation tokens.",
		},
	)

	subscriptionsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vipgate",
			Name:      "subscriptions_expired_total",
			Help:      "Subscriptions transitioned to expired by the reconciler.",
		},
	)

	freeRequestsApproved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vipgate",
			Name:      "free_requests_approved_total",
			Help:      "Free channel requests promoted after the wait time.",
		},
	)

	pointsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vipgate",
			Name:      "points_awarded_total",
			Help:      "Gamification points awarded by reason.",
		},
		[]string{"reason"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, tokensRedeemed, subscriptionsExpired,
			freeRequestsApproved, pointsAwarded)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncTokensRedeemed() {
	tokensRedeemed.Inc()
}

func IncSubscriptionsExpired() {
	subscriptionsExpired.Inc()
}

func IncFreeRequestsApproved() {
	freeRequestsApproved.Inc()
}

// AddPoints tracks awarded points with the award reason as a label.
func AddPoints(reason string, points int64) {
	pointsAwarded.WithLabelValues(reason).Add(float64(points))
}
