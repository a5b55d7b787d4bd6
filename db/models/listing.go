package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Listing represents a rentable item owned by a seller. The core treats it
// as read-only metadata; catalog management lives elsewhere.
type Listing struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;" json:"id"`
	Title      string     `gorm:"not null;index" json:"title"`
	ImageURL   *string    `json:"image_url"`
	OwnerID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	CategoryID *uuid.UUID `gorm:"type:uuid" json:"category_id"`

	PricePerDay decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price_per_day"`
	DeliveryFee decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"delivery_fee"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`

	// Fulfillment capability flags
	PickupAvailable     bool `gorm:"default:true" json:"pickup_available"`
	DeliveryAvailable   bool `gorm:"default:false" json:"delivery_available"`
	MeetPublicAvailable bool `gorm:"default:false" json:"meet_public_available"`
	VisitAvailable      bool `gorm:"default:false" json:"visit_available"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
