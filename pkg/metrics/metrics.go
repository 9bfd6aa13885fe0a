package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "petloc", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "petloc", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	CollectionOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "petloc", Name: "collection_ops_total", Help: "Document store operations by collection and op."},
		[]string{"collection", "op"},
	)
	CartMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "petloc", Name: "cart_mutations_total", Help: "Cart mutations by kind (add, update, remove, clear)."},
		[]string{"kind"},
	)
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "petloc", Name: "uploads_total", Help: "Blob uploads by outcome."},
		[]string{"outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(CollectionOps)
	reg.MustRegister(CartMutations)
	reg.MustRegister(UploadsTotal)
}
