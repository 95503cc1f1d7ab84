// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkflowRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astu_workflow_runs_total",
			Help: "Completed workflow executions by intent and outcome",
		},
		[]string{"intent", "status"},
	)

	NodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "astu_workflow_node_duration_seconds",
			Help:    "Time spent inside each workflow node",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"node"},
	)

	RoutesComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astu_routes_computed_total",
			Help: "Routes computed by strategy",
		},
		[]string{"strategy"},
	)

	ResolverTierHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astu_resolver_tier_hits_total",
			Help: "Resolutions answered by each resolver tier",
		},
		[]string{"kind", "tier"},
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astu_llm_calls_total",
			Help: "Outbound generation calls by status",
		},
		[]string{"status"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "astu_cache_requests_total",
			Help: "Cache lookups by backend and result",
		},
		[]string{"backend", "result"},
	)
)
