package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote is one user's endorsement of one material. The composite unique
// index is the concurrency control for the one-vote-per-pair invariant:
// the ledger inserts with ON CONFLICT DO NOTHING against it rather than
// checking first. Votes are only ever created and hard-deleted.
type Vote struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_material" json:"user_id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_user_material;index" json:"material_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (v *Vote) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
