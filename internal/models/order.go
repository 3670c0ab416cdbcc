package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusDelivering OrderStatus = "delivering"
	StatusDelivered  OrderStatus = "delivered"
	StatusCanceled   OrderStatus = "canceled"
)

// Valid reports whether s is one of the five known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusDelivering, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCanceled
}

type Order struct {
	ID           string      `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID string      `gorm:"type:uuid;index;not null" json:"restaurantId"`
	Restaurant   *Restaurant `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CustomerID   *string     `gorm:"type:uuid;index" json:"customerId"`
	Customer     *User       `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Status       OrderStatus `gorm:"type:varchar(16);index;not null;default:'pending'" json:"status"`
	TotalInCents int64       `gorm:"not null" json:"totalInCents"`
	CreatedAt    time.Time   `gorm:"index;not null" json:"createdAt"`
	Items        []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem keeps a snapshot of the product price so later price changes or
// product deletion do not alter the order.
type OrderItem struct {
	ID           string   `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID      string   `gorm:"type:uuid;index;not null" json:"orderId"`
	ProductID    *string  `gorm:"type:uuid;index" json:"productId"`
	Product      *Product `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	PriceInCents int64    `gorm:"not null" json:"priceInCents"`
	Quantity     int      `gorm:"not null" json:"quantity"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// All returns every table model in dependency order for migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Restaurant{},
		&Product{},
		&Order{},
		&OrderItem{},
		&AuthLink{},
	}
}
