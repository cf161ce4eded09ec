package metrics

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Counter returns the current size of something worth exporting as a gauge
type Counter func(ctx context.Context) (int64, error)

// BusinessMetricsCollector refreshes the business gauges on a cron schedule
type BusinessMetricsCollector struct {
	countEvents         Counter
	countParticipations Counter
	metrics             *Metrics
	logger              *zap.Logger
	cron                *cron.Cron
	schedule            string
}

// NewBusinessMetricsCollector creates a new collector. schedule accepts cron
// expressions and descriptors such as "@every 60s".
func NewBusinessMetricsCollector(countEvents, countParticipations Counter, metrics *Metrics, schedule string, logger *zap.Logger) *BusinessMetricsCollector {
	if schedule == "" {
		schedule = "@every 60s"
	}
	return &BusinessMetricsCollector{
		countEvents:         countEvents,
		countParticipations: countParticipations,
		metrics:             metrics,
		logger:              logger,
		cron:                cron.New(),
		schedule:            schedule,
	}
}

// Start collects once immediately, then on every tick of the schedule
func (c *BusinessMetricsCollector) Start() error {
	if _, err := c.cron.AddFunc(c.schedule, c.Collect); err != nil {
		return err
	}
	c.Collect()
	c.cron.Start()
	return nil
}

// Stop waits for a running collection to finish
func (c *BusinessMetricsCollector) Stop() {
	<-c.cron.Stop().Done()
}

// Collect gathers business metrics
func (c *BusinessMetricsCollector) Collect() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in business metrics collection",
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if events, err := c.countEvents(ctx); err != nil {
		c.logger.Error("Failed to count events", zap.Error(err))
	} else {
		c.metrics.SetEventsTotal(events)
	}

	if participations, err := c.countParticipations(ctx); err != nil {
		c.logger.Error("Failed to count participations", zap.Error(err))
	} else {
		c.metrics.SetParticipationsTotal(participations)
	}
}
