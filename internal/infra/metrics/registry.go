package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		cardsTotal,
		subscriptionsTotal,
		abuseBlocksTotal,
		userActionsTotal,
	)
}

var (
	cardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cards_total",
			Help: "Card registrations and deletions by result.",
		},
		[]string{"action", "result"}, // action: 'register', 'delete'
	)

	subscriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_total",
			Help: "Subscription lifecycle events.",
		},
		[]string{"action"}, // 'subscribe', 'unsubscribe', 'resume', 'change_payment_method', 'pay'
	)

	abuseBlocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abuse_blocks_total",
			Help: "Attempts rejected or subjects blocked by the abuse blocker.",
		},
		[]string{"type"},
	)

	userActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_actions_total",
			Help: "User setting changes by action.",
		},
		[]string{"action"},
	)
)

func IncCard(action string, ok bool) {
	cardsTotal.WithLabelValues(norm(action), result(ok)).Inc()
}

func IncSubscription(action string) {
	subscriptionsTotal.WithLabelValues(norm(action)).Inc()
}

func IncAbuseBlock(abuseType string) {
	abuseBlocksTotal.WithLabelValues(norm(abuseType)).Inc()
}

func IncUserAction(action string) {
	userActionsTotal.WithLabelValues(norm(action)).Inc()
}
