package metrics

import "time"

// IncrementEventCreated increments the event creation counter
func (m *Metrics) IncrementEventCreated() {
	m.safeExecute("IncrementEventCreated", func() {
		m.EventCreatedTotal.Inc()
	})
}

// RecordRegistration counts a registration attempt by its outcome
func (m *Metrics) RecordRegistration(result string) {
	m.safeExecute("RecordRegistration", func() {
		m.RegistrationsTotal.WithLabelValues(result).Inc()
	})
}

func (m *Metrics) IncrementCancellation() {
	m.safeExecute("IncrementCancellation", func() {
		m.CancellationsTotal.Inc()
	})
}

// SetEventsTotal sets total events gauge
func (m *Metrics) SetEventsTotal(count int64) {
	m.safeExecute("SetEventsTotal", func() {
		m.EventsTotal.Set(float64(count))
	})
}

// SetParticipationsTotal sets total participations gauge
func (m *Metrics) SetParticipationsTotal(count int64) {
	m.safeExecute("SetParticipationsTotal", func() {
		m.ParticipationsTotal.Set(float64(count))
	})
}

// ObserveLockWait records how long a request waited for an event lock
func (m *Metrics) ObserveLockWait(wait time.Duration, timedOut bool) {
	m.safeExecute("ObserveLockWait", func() {
		m.LockWaitDuration.Observe(wait.Seconds())
		if timedOut {
			m.LockTimeoutsTotal.Inc()
		}
	})
}
