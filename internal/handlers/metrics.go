package handlers

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Pavel-Shcherbo/REKLIX/pkg/monitoring"
)

// FormMetrics counts form submissions per outcome. Spam verdicts are only
// visible server-side (the submitter sees a success response), so the spam
// counter is the operational signal for abuse traffic.
type FormMetrics struct {
	ContactRequests    *prometheus.CounterVec
	NewsletterRequests *prometheus.CounterVec
	SpamDetected       *prometheus.CounterVec
	NotifyDuration     *prometheus.HistogramVec
}

// NewFormMetrics registers the form counters on the service collector.
func NewFormMetrics(mc *monitoring.MetricsCollector) *FormMetrics {
	return &FormMetrics{
		ContactRequests:    mc.NewCounter("contact_requests_total", "Contact form submissions by outcome", []string{"status"}),
		NewsletterRequests: mc.NewCounter("newsletter_requests_total", "Newsletter signups by outcome", []string{"status"}),
		SpamDetected:       mc.NewCounter("spam_detected_total", "Spam verdicts by endpoint and reason", []string{"endpoint", "reason"}),
		NotifyDuration:     mc.NewHistogram("notify_duration_seconds", "Email delivery duration by kind", []string{"kind"}, nil),
	}
}

func (m *FormMetrics) IncContact(status string) {
	if m == nil || m.ContactRequests == nil {
		return
	}

	m.ContactRequests.WithLabelValues(status).Inc()
}

func (m *FormMetrics) IncNewsletter(status string) {
	if m == nil || m.NewsletterRequests == nil {
		return
	}

	m.NewsletterRequests.WithLabelValues(status).Inc()
}

func (m *FormMetrics) IncSpam(endpoint, reason string) {
	if m == nil || m.SpamDetected == nil {
		return
	}

	m.SpamDetected.WithLabelValues(endpoint, reason).Inc()
}

func (m *FormMetrics) ObserveNotify(kind string, seconds float64) {
	if m == nil || m.NotifyDuration == nil {
		return
	}

	m.NotifyDuration.WithLabelValues(kind).Observe(seconds)
}
