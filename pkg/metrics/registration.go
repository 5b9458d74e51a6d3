package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RegistrationMetrics records the registration workflow and outbound email counters.
type RegistrationMetrics struct {
	duration     *prometheus.HistogramVec
	registered   *prometheus.CounterVec
	emailSent    prometheus.Counter
	emailFailed  prometheus.Counter
	joinResolved *prometheus.CounterVec
}

// NewRegistrationMetrics registers the workflow metrics on the provided registerer.
func NewRegistrationMetrics(reg prometheus.Registerer) *RegistrationMetrics {
	if reg == nil {
		return &RegistrationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "registration_duration_seconds",
		Help:    "Duration of the registration transaction in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	registered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registrations_total",
		Help: "Completed registrations by role.",
	}, []string{"role"})
	emailSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "welcome_emails_sent_total",
		Help: "Welcome emails delivered after commit.",
	})
	emailFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "welcome_emails_failed_total",
		Help: "Welcome emails that failed after retry.",
	})
	joinResolved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "join_requests_resolved_total",
		Help: "Team join requests resolved by decision.",
	}, []string{"decision"})
	reg.MustRegister(duration, registered, emailSent, emailFailed, joinResolved)
	return &RegistrationMetrics{
		duration:     duration,
		registered:   registered,
		emailSent:    emailSent,
		emailFailed:  emailFailed,
		joinResolved: joinResolved,
	}
}

// ObserveDuration records how long the registration transaction took.
func (m *RegistrationMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncRegistered increments the completed-registration counter for the role.
func (m *RegistrationMetrics) IncRegistered(role string) {
	if m == nil || m.registered == nil {
		return
	}
	m.registered.WithLabelValues(normalizeLabel(role)).Inc()
}

// IncEmailSent increments the delivered welcome email counter.
func (m *RegistrationMetrics) IncEmailSent() {
	if m == nil || m.emailSent == nil {
		return
	}
	m.emailSent.Inc()
}

// IncEmailFailed increments the failed welcome email counter.
func (m *RegistrationMetrics) IncEmailFailed() {
	if m == nil || m.emailFailed == nil {
		return
	}
	m.emailFailed.Inc()
}

// IncJoinResolved increments the join request resolution counter.
func (m *RegistrationMetrics) IncJoinResolved(decision string) {
	if m == nil || m.joinResolved == nil {
		return
	}
	m.joinResolved.WithLabelValues(normalizeLabel(decision)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
