package metrics

import "github.com/prometheus/client_golang/prometheus"

// Chat model metrics.
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gaiachat",
			Name:      "llm_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gaiachat",
			Name:      "llm_request_duration_seconds",
			Help:      "Chat completion duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gaiachat",
			Name:      "llm_tokens_total",
			Help:      "Total chat tokens consumed",
		},
		[]string{"model", "type"},
	)

	LLMErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gaiachat",
			Name:      "llm_errors_total",
			Help:      "Total chat completion errors",
		},
		[]string{"model", "error_type"},
	)

	AgentToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gaiachat",
			Name:      "agent_tool_calls_total",
			Help:      "Tool invocations requested by the chat model",
		},
		[]string{"tool", "status"},
	)
)

var llmMetricsRegistered bool

// RegisterLLMMetrics registers Prometheus chat metrics. Must be called once from main.
func RegisterLLMMetrics() {
	if llmMetricsRegistered {
		return
	}
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(LLMTokensTotal)
	prometheus.MustRegister(LLMErrorsTotal)
	prometheus.MustRegister(AgentToolCallsTotal)
	llmMetricsRegistered = true
}
