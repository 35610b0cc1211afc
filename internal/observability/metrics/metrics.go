package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes operational counters for the lead flows.
type LeadMetrics struct {
	dispatchTotal   *prometheus.CounterVec
	sessionsTotal   *prometheus.CounterVec
	transitionTotal *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "elitegym",
			Subsystem: "leads",
			Name:      "dispatch_total",
			Help:      "Lead hand-offs attempted, by kind, channel and outcome",
		}, []string{"kind", "channel", "status"}),
		sessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "elitegym",
			Subsystem: "leads",
			Name:      "sessions_opened_total",
			Help:      "Funnel and registration sessions opened",
		}, []string{"flow"}),
		transitionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "elitegym",
			Subsystem: "leads",
			Name:      "funnel_transitions_total",
			Help:      "Funnel state transitions, by target state",
		}, []string{"state"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.dispatchTotal, m.sessionsTotal, m.transitionTotal)
	return m
}

func (m *LeadMetrics) ObserveDispatch(kind, channel string, ok bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.dispatchTotal.WithLabelValues(kind, channel, status).Inc()
}

func (m *LeadMetrics) ObserveSessionOpened(flow string) {
	if m == nil {
		return
	}
	m.sessionsTotal.WithLabelValues(flow).Inc()
}

func (m *LeadMetrics) ObserveTransition(state string) {
	if m == nil {
		return
	}
	m.transitionTotal.WithLabelValues(state).Inc()
}
