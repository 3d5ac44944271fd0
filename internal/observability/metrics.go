package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_requests_total",
			Help: "Total number of requests",
		},
		[]string{"route", "code", "method"},
	)

	SeatingMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_seating_mutations_total",
			Help: "Seating plan mutations by operation",
		},
		[]string{"op"},
	)

	CapacityRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_capacity_rejections_total",
			Help: "Guest assignments rejected for exceeding table capacity",
		},
	)

	PlanWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wedding_plan_write_seconds",
			Help:    "Duration of seating plan document writes",
			Buckets: prometheus.DefBuckets,
		},
	)

	InvitesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_invites_sent_total",
			Help: "Total invites marked as sent",
		},
	)

	RSVPSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_rsvp_submissions_total",
			Help: "RSVP submissions by answer",
		},
		[]string{"answer"},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wedding_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
