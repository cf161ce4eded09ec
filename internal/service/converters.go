package service

import (
	"go.uber.org/zap"

	"campus-events-api/internal/domain"
	"campus-events-api/internal/dto"
	"campus-events-api/internal/util"
)

func toParticipationResponse(p *domain.Participation) *dto.ParticipationResponse {
	return &dto.ParticipationResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		EventID:   p.EventID,
		CreatedAt: p.CreatedAt,
	}
}

func toParticipationResponses(participations []*domain.Participation) []*dto.ParticipationResponse {
	responses := make([]*dto.ParticipationResponse, 0, len(participations))
	for _, p := range participations {
		responses = append(responses, toParticipationResponse(p))
	}
	return responses
}

// toEventResponse converts an event and its live participation count.
// A Markdown rendering failure leaves descriptionHtml empty.
func toEventResponse(event *domain.Event, count int64, logger *zap.Logger) *dto.EventResponse {
	html, err := util.RenderMarkdown(event.Description)
	if err != nil {
		logger.Warn("Failed to render event description",
			zap.String("event_id", event.ID.String()),
			zap.Error(err))
		html = ""
	}

	tags := []string(event.Tags)
	if tags == nil {
		tags = []string{}
	}

	var capacity *int
	if event.Capacity != nil {
		c := *event.Capacity
		capacity = &c
	}

	return &dto.EventResponse{
		ID:               event.ID,
		Title:            event.Title,
		Description:      event.Description,
		DescriptionHTML:  html,
		HostID:           event.HostID,
		StartTime:        event.StartTime,
		EndTime:          event.EndTime,
		Capacity:         capacity,
		Tags:             tags,
		ImageURL:         event.ImageURL,
		ParticipantCount: count,
		RemainingSeats:   event.RemainingSeats(count),
		CreatedAt:        event.CreatedAt,
		UpdatedAt:        event.UpdatedAt,
	}
}
