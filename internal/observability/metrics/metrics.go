package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the assistant's chat flow.
type ChatMetrics struct {
	chatRequests     *prometheus.CounterVec
	chatLatency      *prometheus.HistogramVec
	toolInvocations  *prometheus.CounterVec
	bookingOutcomes  *prometheus.CounterVec
	availabilityOpen prometheus.Counter
	llmTokens        *prometheus.CounterVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostwise",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total chat turns processed",
		}, []string{"status"}),
		chatLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hostwise",
			Subsystem: "chat",
			Name:      "turn_latency_seconds",
			Help:      "Latency of a full chat turn including tool calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		toolInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostwise",
			Subsystem: "tools",
			Name:      "invocations_total",
			Help:      "Total tool invocations by the model",
		}, []string{"tool", "status"}),
		bookingOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostwise",
			Subsystem: "reservations",
			Name:      "outcomes_total",
			Help:      "Reservation operations by outcome",
		}, []string{"operation", "outcome"}),
		availabilityOpen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hostwise",
			Subsystem: "reservations",
			Name:      "availability_fail_open_total",
			Help:      "Availability checks that failed open due to store errors",
		}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostwise",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "LLM tokens consumed",
		}, []string{"provider", "kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.chatRequests, m.chatLatency, m.toolInvocations,
		m.bookingOutcomes, m.availabilityOpen, m.llmTokens,
	)
	return m
}

func (m *ChatMetrics) ObserveChatRequest(status string) {
	if m == nil {
		return
	}
	m.chatRequests.WithLabelValues(status).Inc()
}

func (m *ChatMetrics) ObserveChatLatency(provider string, seconds float64) {
	if m == nil {
		return
	}
	m.chatLatency.WithLabelValues(provider).Observe(seconds)
}

func (m *ChatMetrics) ObserveToolInvocation(tool, status string) {
	if m == nil {
		return
	}
	m.toolInvocations.WithLabelValues(tool, status).Inc()
}

func (m *ChatMetrics) ObserveBookingOutcome(operation, outcome string) {
	if m == nil {
		return
	}
	m.bookingOutcomes.WithLabelValues(operation, outcome).Inc()
}

func (m *ChatMetrics) ObserveAvailabilityFailOpen() {
	if m == nil {
		return
	}
	m.availabilityOpen.Inc()
}

func (m *ChatMetrics) ObserveLLMTokens(provider, kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.llmTokens.WithLabelValues(provider, kind).Add(float64(n))
}
