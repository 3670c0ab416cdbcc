package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID           string      `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID string      `gorm:"type:uuid;index;not null" json:"restaurantId"`
	Restaurant   *Restaurant `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name         string      `gorm:"not null" json:"name"`
	Description  *string     `json:"description"`
	PriceInCents int64       `gorm:"not null" json:"priceInCents"`
	Available    bool        `gorm:"not null" json:"available"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
