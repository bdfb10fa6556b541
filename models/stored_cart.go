package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoredCart is one persisted cart blob, unique per (identifier, instance).
// Content holds the serialized cart state.
type StoredCart struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Identifier string    `gorm:"uniqueIndex:idx_stored_carts_identity;not null" json:"identifier"`
	Instance   string    `gorm:"uniqueIndex:idx_stored_carts_identity;not null" json:"instance"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *StoredCart) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
