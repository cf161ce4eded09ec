package service

import (
	"context"

	"github.com/google/uuid"

	"campus-events-api/internal/cache"
	"campus-events-api/internal/domain"
	"campus-events-api/internal/repository"
)

// findEvent reads an event outside of a transaction, preferring the cache.
// Only event records are cached; counts are always read from the ledger.
func findEvent(ctx context.Context, repo repository.EventRepository, eventCache *cache.EventCache, eventID uuid.UUID) (*domain.Event, error) {
	load := func() (*domain.Event, error) {
		event, err := repo.FindByID(ctx, eventID)
		if err != nil {
			return nil, eventLookupError(err)
		}
		return event, nil
	}
	if eventCache == nil {
		return load()
	}
	return eventCache.GetOrLoad(eventID, load)
}
