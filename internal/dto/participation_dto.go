package dto

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest represents a registration request
// @Description userId defaults to the authenticated user
// @Description Hosts and admins may register another user
type RegisterRequest struct {
	EventID uuid.UUID  `json:"eventId" binding:"required" example:"1275eac5-f0f9-4bee-8235-576a0042f42b"`
	UserID  *uuid.UUID `json:"userId,omitempty" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
}

// ListParticipationsQuery pages through every registration
type ListParticipationsQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ParticipationResponse represents a registration of a user for an event
type ParticipationResponse struct {
	ID        uuid.UUID `json:"id" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	UserID    uuid.UUID `json:"userId" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	EventID   uuid.UUID `json:"eventId" example:"1275eac5-f0f9-4bee-8235-576a0042f42b"`
	CreatedAt time.Time `json:"createdAt" example:"2026-03-15T10:30:00Z"`
}

// CountResponse is the participation count of an event
type CountResponse struct {
	EventID uuid.UUID `json:"eventId" example:"1275eac5-f0f9-4bee-8235-576a0042f42b"`
	Count   int64     `json:"count" example:"42"`
}

// CheckRequest holds the query parameters of a registration check
type CheckRequest struct {
	EventID string `form:"eventId" binding:"required"`
	UserID  string `form:"userId"`
}

// CheckResponse tells whether a user is registered for an event
type CheckResponse struct {
	EventID    uuid.UUID `json:"eventId" example:"1275eac5-f0f9-4bee-8235-576a0042f42b"`
	UserID     uuid.UUID `json:"userId" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	Registered bool      `json:"registered" example:"true"`
}

// UserCountResponse is the number of events a user is registered for
type UserCountResponse struct {
	UserID uuid.UUID `json:"userId" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	Count  int64     `json:"count" example:"3"`
}
