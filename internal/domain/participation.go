package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Participation is one user's registration for one event.
// It is created on register and hard-deleted on cancel; it is never updated.
type Participation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_participations_user_id;uniqueIndex:uq_participations_user_event" json:"userId"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index:idx_participations_event_id;uniqueIndex:uq_participations_user_event" json:"eventId"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

// TableName specifies the table name for Participation
func (Participation) TableName() string {
	return "participations"
}

func (p *Participation) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
