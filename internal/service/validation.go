package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"campus-events-api/internal/response"
)

const (
	maxTags      = 20
	maxTagLength = 50
)

// validateSchedule ensures an event ends strictly after it starts
func validateSchedule(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return response.NewAppError(response.ErrCodeInvalidSchedule, "Start and end time are required", "")
	}
	if !end.After(start) {
		return response.NewAppError(response.ErrCodeInvalidSchedule, "Event must end after it starts", "")
	}
	return nil
}

// validateCapacity accepts nil (unlimited) or a positive number
func validateCapacity(capacity *int) error {
	if capacity != nil && *capacity <= 0 {
		return response.NewAppError(response.ErrCodeInvalidCapacity, "Capacity must be a positive number", "")
	}
	return nil
}

// checkCapacityFloor rejects a capacity below the number of existing participations
func checkCapacityFloor(capacity *int, count int64) error {
	if capacity != nil && int64(*capacity) < count {
		return response.NewAppError(response.ErrCodeCapacityTooLow,
			fmt.Sprintf("Capacity cannot be lower than the current %d participants", count), "")
	}
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", response.NewValidationError("Title is required", "")
	}
	return title, nil
}

// normalizeTags trims tags, drops empty ones and removes duplicates, keeping the first occurrence
func normalizeTags(tags []string) ([]string, error) {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > maxTagLength {
			return nil, response.NewValidationError(fmt.Sprintf("Tags can be at most %d characters", maxTagLength), tag)
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}
	if len(result) > maxTags {
		return nil, response.NewValidationError(fmt.Sprintf("An event can have at most %d tags", maxTags), "")
	}
	return result, nil
}
