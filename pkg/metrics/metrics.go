// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesTotal tracks inbound and outbound chat messages.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_total",
			Help: "Total chat messages processed",
		},
		[]string{"direction", "kind"},
	)

	// ExchangeDuration tracks full request/response exchange duration.
	ExchangeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_exchange_duration_seconds",
			Help:    "Duration of one inbound event exchange",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"kind", "status"},
	)

	// CompletionDuration tracks completion service call duration.
	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_completion_duration_seconds",
			Help:    "LLM completion call duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"model", "status"},
	)

	// CompletionTokensTotal tracks LLM tokens processed.
	CompletionTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// ToolCallsTotal tracks tool invocations requested by the model.
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_tool_calls_total",
			Help: "Total tool calls dispatched",
		},
		[]string{"tool", "status"},
	)

	// SearchDuration tracks catalog similarity search duration.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_search_duration_seconds",
			Help:    "Catalog similarity search duration",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"mode", "status"},
	)

	// SessionsActive tracks live conversation sessions.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_sessions_active",
			Help: "Number of live conversation sessions",
		},
	)

	// SessionsEvictedTotal tracks sessions removed by the idle janitor.
	SessionsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_sessions_evicted_total",
			Help: "Total sessions evicted after idling",
		},
	)

	// PaymentLinksTotal tracks generated payment links.
	PaymentLinksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_payment_links_total",
			Help: "Total payment links generated",
		},
	)
)

// RecordCompletion records metrics for one completion call.
func RecordCompletion(model, status string, duration float64, tokensIn, tokensOut int) {
	CompletionDuration.WithLabelValues(model, status).Observe(duration)
	CompletionTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	CompletionTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}

// RecordToolCall records one dispatched tool call.
func RecordToolCall(tool, status string) {
	ToolCallsTotal.WithLabelValues(tool, status).Inc()
}

// RecordSearch records one catalog search.
func RecordSearch(mode, status string, duration float64) {
	SearchDuration.WithLabelValues(mode, status).Observe(duration)
}
