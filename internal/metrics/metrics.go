package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label names
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelOp      = "op"
	LabelCatalog = "catalog"
	LabelResult  = "result"
	LabelTrigger = "trigger"
	LabelCode    = "code"
)

// HTTPLatencyBuckets are tuned for in-process rolls, mostly well under 10ms.
var HTTPLatencyBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// RPC Metrics
var (
	RPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{LabelMethod, LabelCode},
	)
)

// Loot Metrics
var (
	RollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loot_rolls_total",
			Help: "Total number of roll or loot evaluations",
		},
		[]string{LabelOp, LabelCatalog},
	)

	RewardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loot_rewards_total",
			Help: "Total number of rewarded item copies",
		},
		[]string{LabelCatalog},
	)

	EmptyRollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loot_empty_rolls_total",
			Help: "Total number of evaluations that rewarded nothing",
		},
		[]string{LabelCatalog},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loot_cache_requests_total",
			Help: "Seeded result cache lookups by result (hit, miss)",
		},
		[]string{LabelResult},
	)

	ReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loot_reloads_total",
			Help: "Total number of definition reloads by trigger (admin, watch)",
		},
		[]string{LabelTrigger},
	)
)
