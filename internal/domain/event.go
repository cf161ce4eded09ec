package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Event represents a campus event hosted by an organizer
type Event struct {
	BaseModel
	Title       string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	HostID      uuid.UUID                   `gorm:"type:uuid;not null;index:idx_events_host_id" json:"hostId"`
	StartTime   time.Time                   `gorm:"not null;index:idx_events_start_time" json:"startTime"`
	EndTime     time.Time                   `gorm:"not null" json:"endTime"`
	Capacity    *int                        `json:"capacity"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	ImageURL    string                      `gorm:"type:varchar(1024)" json:"imageUrl,omitempty"`

	// An issued but unconfirmed image upload. The object may not exist yet.
	PendingImageKey       string     `gorm:"type:varchar(512)" json:"-"`
	PendingImageExpiresAt *time.Time `gorm:"index:idx_events_pending_image_expires_at" json:"-"`
}

// TableName specifies the table name for Event
func (Event) TableName() string {
	return "events"
}

// IsUnlimited reports whether the event accepts any number of participants
func (e *Event) IsUnlimited() bool {
	return e.Capacity == nil
}

// HasEnded reports whether registration is closed at now
func (e *Event) HasEnded(now time.Time) bool {
	return !now.Before(e.EndTime)
}

// IsFull reports whether count participants leave no seat free
func (e *Event) IsFull(count int64) bool {
	if e.Capacity == nil {
		return false
	}
	return count >= int64(*e.Capacity)
}

// RemainingSeats returns nil for unlimited events and never goes below zero
func (e *Event) RemainingSeats(count int64) *int64 {
	if e.Capacity == nil {
		return nil
	}
	remaining := int64(*e.Capacity) - count
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// HasTag reports whether the event carries tag
func (e *Event) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasPendingImage reports whether key is the upload currently awaiting confirmation
func (e *Event) HasPendingImage(key string) bool {
	return key != "" && e.PendingImageKey == key
}

// ImageUploadExpired reports whether the pending upload should be discarded at now
func (e *Event) ImageUploadExpired(now time.Time) bool {
	return e.PendingImageKey != "" && e.PendingImageExpiresAt != nil && !now.Before(*e.PendingImageExpiresAt)
}

// ClearPendingImage forgets the pending upload and returns its key
func (e *Event) ClearPendingImage() string {
	key := e.PendingImageKey
	e.PendingImageKey = ""
	e.PendingImageExpiresAt = nil
	return key
}

// Clone returns a deep copy of the event
func (e *Event) Clone() *Event {
	clone := *e
	if e.Capacity != nil {
		capacity := *e.Capacity
		clone.Capacity = &capacity
	}
	if e.PendingImageExpiresAt != nil {
		expiresAt := *e.PendingImageExpiresAt
		clone.PendingImageExpiresAt = &expiresAt
	}
	if e.Tags != nil {
		clone.Tags = append(datatypes.JSONSlice[string](nil), e.Tags...)
	}
	return &clone
}
