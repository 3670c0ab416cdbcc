package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthLink is a single-use magic-link code e-mailed to a manager.
type AuthLink struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"uniqueIndex;not null"`
	UserID    string    `gorm:"type:uuid;index;not null"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (a *AuthLink) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
