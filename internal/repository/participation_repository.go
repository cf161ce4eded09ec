package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campus-events-api/internal/domain"
)

// ErrDuplicateParticipation is returned by Create when the (user, event) pair already exists
var ErrDuplicateParticipation = errors.New("participation already exists")

// ParticipationRepository is the participation ledger.
// Counts are always derived from the rows; nothing is cached.
type ParticipationRepository interface {
	CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
	Exists(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
	Create(ctx context.Context, userID, eventID uuid.UUID) (*domain.Participation, error)
	Delete(ctx context.Context, userID, eventID uuid.UUID) error
	DeleteAllForEvent(ctx context.Context, eventID uuid.UUID) (int64, error)
	FindByEventID(ctx context.Context, eventID uuid.UUID) ([]*domain.Participation, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Participation, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	FindAll(ctx context.Context, limit, offset int) ([]*domain.Participation, error)
}

// participationRepositoryImpl is the GORM implementation of ParticipationRepository
type participationRepositoryImpl struct {
	db *gorm.DB
}

// NewParticipationRepository creates a new instance of ParticipationRepository
func NewParticipationRepository(db *gorm.DB) ParticipationRepository {
	return &participationRepositoryImpl{db: db}
}

// CountByEvent counts participations for an event; unknown events yield 0
func (r *participationRepositoryImpl) CountByEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Participation{}).
		Where("event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks whether the user is registered for the event
func (r *participationRepositoryImpl) Exists(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Participation{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a participation, relying on the unique index to reject duplicates
func (r *participationRepositoryImpl) Create(ctx context.Context, userID, eventID uuid.UUID) (*domain.Participation, error) {
	participation := &domain.Participation{
		UserID:  userID,
		EventID: eventID,
	}
	if err := r.db.WithContext(ctx).Create(participation).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateParticipation
		}
		return nil, err
	}
	return participation, nil
}

// Delete hard-deletes the participation for the pair.
// Returns gorm.ErrRecordNotFound when nothing was deleted.
func (r *participationRepositoryImpl) Delete(ctx context.Context, userID, eventID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&domain.Participation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAllForEvent removes every participation of an event and returns the number of rows removed
func (r *participationRepositoryImpl) DeleteAllForEvent(ctx context.Context, eventID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&domain.Participation{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// FindByEventID returns the roster of an event, oldest registration first
func (r *participationRepositoryImpl) FindByEventID(ctx context.Context, eventID uuid.UUID) ([]*domain.Participation, error) {
	var participations []*domain.Participation
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&participations).Error; err != nil {
		return nil, err
	}
	return participations, nil
}

// FindByUserID returns all registrations of a user, newest first
func (r *participationRepositoryImpl) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Participation, error) {
	var participations []*domain.Participation
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&participations).Error; err != nil {
		return nil, err
	}
	return participations, nil
}

func (r *participationRepositoryImpl) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Participation{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *participationRepositoryImpl) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Participation{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindAll pages through every registration, newest first. limit <= 0 means no limit.
func (r *participationRepositoryImpl) FindAll(ctx context.Context, limit, offset int) ([]*domain.Participation, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var participations []*domain.Participation
	if err := query.Find(&participations).Error; err != nil {
		return nil, err
	}
	return participations, nil
}

// isDuplicateKeyError detects unique violations whether or not the dialector translates them
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
