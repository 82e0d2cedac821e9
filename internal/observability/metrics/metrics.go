package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// ChatbotMetrics exposes counters/histograms for the booking assistant.
type ChatbotMetrics struct {
	turnsTotal   *prometheus.CounterVec
	commitsTotal *prometheus.CounterVec
	turnLatency  *prometheus.HistogramVec
}

func NewChatbotMetrics(reg prometheus.Registerer) *ChatbotMetrics {
	m := &ChatbotMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "chatbot",
			Name:      "turns_total",
			Help:      "Total assistant turns by outcome",
		}, []string{"outcome"}),
		commitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "chatbot",
			Name:      "commits_total",
			Help:      "Total bookings handed to storage by the assistant",
		}, []string{"status"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "chatbot",
			Name:      "turn_latency_seconds",
			Help:      "Latency of a full assistant turn, lock to reply",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.commitsTotal, m.turnLatency)
	return m
}

func (m *ChatbotMetrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome).Inc()
}

func (m *ChatbotMetrics) ObserveCommit(success bool) {
	if m == nil {
		return
	}
	status := "failed"
	if success {
		status = "stored"
	}
	m.commitsTotal.WithLabelValues(status).Inc()
}

func (m *ChatbotMetrics) ObserveTurnLatency(transport string, seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.WithLabelValues(transport).Observe(seconds)
}

// HTTPMetrics counts API requests by route pattern and status.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration)
	return m
}

func (m *HTTPMetrics) ObserveRequest(method, route string, code int, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}
