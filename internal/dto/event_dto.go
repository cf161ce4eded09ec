package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateEventRequest represents the request to create an event
// @Description Request body for creating a new event
// @Description capacity is optional; omit it for unlimited events
// @Description description accepts Markdown
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,max=255" example:"Spring Hackathon"`
	Description string    `json:"description" binding:"max=10000" example:"Bring a laptop. **Pizza provided.**"`
	StartTime   time.Time `json:"startTime" binding:"required" example:"2026-04-10T09:00:00Z"`
	EndTime     time.Time `json:"endTime" binding:"required" example:"2026-04-10T18:00:00Z"`
	Capacity    *int      `json:"capacity,omitempty" example:"120"`
	Tags        []string  `json:"tags,omitempty" binding:"max=20,dive,max=50" example:"tech,workshop"`
}

// UpdateEventRequest represents a partial update of an event
// @Description Only provided fields are updated
// @Description Set removeCapacity=true to make the event unlimited
type UpdateEventRequest struct {
	Title          *string    `json:"title,omitempty" binding:"omitempty,min=1,max=255" example:"Spring Hackathon 2026"`
	Description    *string    `json:"description,omitempty" binding:"omitempty,max=10000" example:"Updated agenda"`
	StartTime      *time.Time `json:"startTime,omitempty" example:"2026-04-10T10:00:00Z"`
	EndTime        *time.Time `json:"endTime,omitempty" example:"2026-04-10T19:00:00Z"`
	Capacity       *int       `json:"capacity,omitempty" example:"150"`
	RemoveCapacity bool       `json:"removeCapacity,omitempty" example:"false"`
	Tags           *[]string  `json:"tags,omitempty" binding:"omitempty,max=20,dive,max=50" example:"tech,workshop"`
}

// UpdateCapacityRequest changes only the capacity of an event
// @Description capacity is required; capacity=null makes the event unlimited
type UpdateCapacityRequest struct {
	Capacity *int `json:"capacity" example:"50"`
}

// ListEventsQuery holds the query parameters for listing events
type ListEventsQuery struct {
	HostID   string `form:"hostId"`
	Tag      string `form:"tag"`
	Upcoming bool   `form:"upcoming"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
}

// EventResponse represents an event with its live participation count
// @Description Event information
// @Description remainingSeats is null for unlimited events
type EventResponse struct {
	ID               uuid.UUID `json:"id" example:"1275eac5-f0f9-4bee-8235-576a0042f42b"`
	Title            string    `json:"title" example:"Spring Hackathon"`
	Description      string    `json:"description" example:"Bring a laptop. **Pizza provided.**"`
	DescriptionHTML  string    `json:"descriptionHtml" example:"<p>Bring a laptop. <strong>Pizza provided.</strong></p>"`
	HostID           uuid.UUID `json:"hostId" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	StartTime        time.Time `json:"startTime" example:"2026-04-10T09:00:00Z"`
	EndTime          time.Time `json:"endTime" example:"2026-04-10T18:00:00Z"`
	Capacity         *int      `json:"capacity" example:"120"`
	Tags             []string  `json:"tags" example:"tech,workshop"`
	ImageURL         string    `json:"imageUrl,omitempty" example:"https://bucket.s3.ap-northeast-2.amazonaws.com/events/1275eac5/2026/04/cover.png"`
	ParticipantCount int64     `json:"participantCount" example:"42"`
	RemainingSeats   *int64    `json:"remainingSeats" example:"78"`
	CreatedAt        time.Time `json:"createdAt" example:"2026-03-01T12:00:00Z"`
	UpdatedAt        time.Time `json:"updatedAt" example:"2026-03-01T12:00:00Z"`
}

// DeleteEventResponse reports the outcome of an event deletion
type DeleteEventResponse struct {
	EventID               uuid.UUID `json:"eventId" example:"1275eac5-f0f9-4bee-8235-576a0042f42b"`
	RemovedParticipations int64     `json:"removedParticipations" example:"42"`
}

// ImageUploadRequest represents the request for an event image upload URL
// @Description contentType must be an image MIME type
type ImageUploadRequest struct {
	FileName    string `json:"fileName" binding:"required,max=255" example:"cover.png"`
	ContentType string `json:"contentType" binding:"required,max=100" example:"image/png"`
	FileSize    int64  `json:"fileSize" binding:"omitempty,min=1,max=10485760" example:"204800"`
}

// ImageUploadResponse carries the presigned upload URL
// @Description Upload the file with an HTTP PUT to uploadUrl before expiresIn seconds pass,
// @Description then confirm it with PUT /events/{eventId}/image/confirm. imageUrl becomes the event image only after confirmation.
type ImageUploadResponse struct {
	UploadURL string `json:"uploadUrl" example:"https://bucket.s3.amazonaws.com/events/...?X-Amz-Signature=..."`
	FileKey   string `json:"fileKey" example:"events/1275eac5-f0f9-4bee-8235-576a0042f42b/2026/04/uuid_1712736000.png"`
	ImageURL  string `json:"imageUrl" example:"https://bucket.s3.ap-northeast-2.amazonaws.com/events/1275eac5/2026/04/uuid_1712736000.png"`
	ExpiresIn int    `json:"expiresIn" example:"300"`
}

// ConfirmImageUploadRequest confirms a finished upload
type ConfirmImageUploadRequest struct {
	FileKey string `json:"fileKey" binding:"required,max=512" example:"events/1275eac5-f0f9-4bee-8235-576a0042f42b/2026/04/uuid_1712736000.png"`
}
