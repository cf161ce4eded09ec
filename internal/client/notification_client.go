package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-events-api/internal/metrics"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationRegistrationConfirmed NotificationType = "REGISTRATION_CONFIRMED"
	NotificationRegistrationCancelled NotificationType = "REGISTRATION_CANCELLED"
	NotificationEventCancelled        NotificationType = "EVENT_CANCELLED"
)

const resourceTypeEvent = "EVENT"

// NotificationEvent represents a notification to be sent
type NotificationEvent struct {
	Type         NotificationType       `json:"type"`
	ActorID      uuid.UUID              `json:"actorId"`
	TargetUserID uuid.UUID              `json:"targetUserId"`
	ResourceType string                 `json:"resourceType"`
	ResourceID   uuid.UUID              `json:"resourceId"`
	ResourceName string                 `json:"resourceName,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	OccurredAt   string                 `json:"occurredAt,omitempty"`
}

// NewEventNotification builds a notification about an event
func NewEventNotification(kind NotificationType, actorID, targetUserID, eventID uuid.UUID, eventTitle string) NotificationEvent {
	return NotificationEvent{
		Type:         kind,
		ActorID:      actorID,
		TargetUserID: targetUserID,
		ResourceType: resourceTypeEvent,
		ResourceID:   eventID,
		ResourceName: eventTitle,
	}
}

// BulkNotificationRequest represents a bulk notification request
type BulkNotificationRequest struct {
	Notifications []NotificationEvent `json:"notifications"`
}

// NotificationClient defines the interface for notification service communication.
// Delivery is best-effort: transport failures are logged, not returned.
type NotificationClient interface {
	SendNotification(ctx context.Context, event NotificationEvent) error
	SendBulkNotifications(ctx context.Context, events []NotificationEvent) error
}

// notificationClient implements NotificationClient interface
type notificationClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewNotificationClient creates a new Notification API client
func NewNotificationClient(baseURL string, apiKey string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) NotificationClient {
	return &notificationClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: m,
	}
}

// SendNotification sends a single notification to the notification service
func (c *notificationClient) SendNotification(ctx context.Context, event NotificationEvent) error {
	if event.OccurredAt == "" {
		event.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}

	return c.post(ctx, "/api/internal/notifications", event,
		zap.String("type", string(event.Type)),
		zap.String("target_user_id", event.TargetUserID.String()),
	)
}

// SendBulkNotifications sends multiple notifications at once
func (c *notificationClient) SendBulkNotifications(ctx context.Context, events []NotificationEvent) error {
	if len(events) == 0 {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i := range events {
		if events[i].OccurredAt == "" {
			events[i].OccurredAt = now
		}
	}

	return c.post(ctx, "/api/internal/notifications/bulk", BulkNotificationRequest{Notifications: events},
		zap.Int("count", len(events)),
	)
}

func (c *notificationClient) post(ctx context.Context, path string, payload interface{}, fields ...zap.Field) error {
	url := c.baseURL + path

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-API-Key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	if c.metrics != nil {
		c.metrics.RecordNotificationCall(path, http.MethodPost, statusCode, duration, err)
	}

	fields = append(fields, zap.Duration("duration", duration))

	if err != nil {
		c.logger.Error("Failed to send notification", append(fields, zap.Error(err))...)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Info("Notification sent", fields...)
		return nil
	}

	c.logger.Warn("Notification service returned non-success status",
		append(fields, zap.Int("status_code", resp.StatusCode))...,
	)
	return nil
}

// NoOpNotificationClient is a no-op implementation for when notifications are disabled
type NoOpNotificationClient struct{}

func NewNoOpNotificationClient() NotificationClient {
	return &NoOpNotificationClient{}
}

func (c *NoOpNotificationClient) SendNotification(ctx context.Context, event NotificationEvent) error {
	return nil
}

func (c *NoOpNotificationClient) SendBulkNotifications(ctx context.Context, events []NotificationEvent) error {
	return nil
}
