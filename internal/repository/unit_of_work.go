package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxFunc receives repositories bound to a single transaction
type TxFunc func(events EventRepository, participations ParticipationRepository) error

// UnitOfWork runs a TxFunc inside one database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	Do(ctx context.Context, fn TxFunc) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a GORM backed UnitOfWork
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn TxFunc) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewEventRepository(tx), NewParticipationRepository(tx))
	})
}
