package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"campus-events-api/internal/database"
	"campus-events-api/internal/response"
)

// For any capacity C and N concurrent registrations of distinct users,
// exactly min(C, N) succeed, the rest fail with EVENT_FULL, and the ledger holds min(C, N) rows
func TestProperty_CapacityIsNeverExceeded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	properties.Property("concurrent registrations never exceed capacity", prop.ForAll(
		func(capacity, attempts int) bool {
			db, err := openIntegrationDB()
			if err != nil {
				t.Logf("open database: %v", err)
				return false
			}
			defer func() { _ = database.Close(db) }()

			env := newIntegrationEnv(db)
			ctx := context.Background()

			event, err := env.createEvent(ctx, intPtr(capacity))
			if err != nil {
				t.Logf("create event: %v", err)
				return false
			}

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				successes int
				full      int
			)
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := env.register(ctx, uuid.New(), event.ID)
					mu.Lock()
					defer mu.Unlock()
					if err == nil {
						successes++
					} else if response.IsCode(err, response.ErrCodeEventFull) {
						full++
					}
				}()
			}
			wg.Wait()

			expected := attempts
			if capacity < expected {
				expected = capacity
			}

			count, err := env.registrations.GetCount(ctx, event.ID)
			if err != nil {
				return false
			}
			return successes == expected &&
				full == attempts-expected &&
				count.Count == int64(expected)
		},
		gen.IntRange(1, 8),
		gen.IntRange(0, 16),
	))

	properties.TestingRun(t)
}

// For any sequence of register and cancel operations by a small set of users,
// the ledger count equals the number of users whose last successful operation was a registration
func TestProperty_CountMatchesRegisteredUsers(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	properties.Property("count is derived from the ledger", prop.ForAll(
		func(ops []int) bool {
			db, err := openIntegrationDB()
			if err != nil {
				return false
			}
			defer func() { _ = database.Close(db) }()

			env := newIntegrationEnv(db)
			ctx := context.Background()

			event, err := env.createEvent(ctx, nil)
			if err != nil {
				return false
			}

			users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
			registered := make(map[uuid.UUID]bool)

			for _, op := range ops {
				userID := users[op%len(users)]
				if op < len(users) {
					err := env.register(ctx, userID, event.ID)
					if registered[userID] && !response.IsCode(err, response.ErrCodeAlreadyRegistered) {
						return false
					}
					if !registered[userID] && err != nil {
						return false
					}
					registered[userID] = true
				} else {
					err := env.registrations.Cancel(ctx, user(userID), userID, event.ID)
					if !registered[userID] && !response.IsCode(err, response.ErrCodeNotFound) {
						return false
					}
					if registered[userID] && err != nil {
						return false
					}
					registered[userID] = false
				}
			}

			expected := int64(0)
			for _, ok := range registered {
				if ok {
					expected++
				}
			}
			count, err := env.registrations.GetCount(ctx, event.ID)
			return err == nil && count.Count == expected
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.TestingRun(t)
}
