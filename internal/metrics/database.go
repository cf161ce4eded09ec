package metrics

import (
	"database/sql"
	"strings"
	"time"
)

// UpdateDBStats updates database connection pool metrics.
// sql.DBStats wait figures are cumulative, so only the delta since the
// previous call is added to the counters.
func (m *Metrics) UpdateDBStats(statsInterface interface{}) {
	m.safeExecute("UpdateDBStats", func() {
		stats, ok := statsInterface.(sql.DBStats)
		if !ok {
			return
		}
		m.DBConnectionsOpen.Set(float64(stats.OpenConnections))
		m.DBConnectionsInUse.Set(float64(stats.InUse))
		m.DBConnectionsIdle.Set(float64(stats.Idle))
		m.DBConnectionsMax.Set(float64(stats.MaxOpenConnections))

		m.statsMu.Lock()
		defer m.statsMu.Unlock()
		if delta := stats.WaitCount - m.lastWaitCount; delta > 0 {
			m.DBConnectionWaitTotal.Add(float64(delta))
		}
		if delta := stats.WaitDuration - m.lastWaitDuration; delta > 0 {
			m.DBConnectionWaitDuration.Add(delta.Seconds())
		}
		m.lastWaitCount = stats.WaitCount
		m.lastWaitDuration = stats.WaitDuration
	})
}

// RecordDBQuery records database query metrics
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration, err error) {
	m.safeExecute("RecordDBQuery", func() {
		operation = strings.ToLower(operation)
		m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())

		if err != nil {
			m.DBQueryErrors.WithLabelValues(operation, table).Inc()
		}
	})
}
