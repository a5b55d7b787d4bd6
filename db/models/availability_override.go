package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OverrideKind string

const (
	WithdrawalOverrideKind  OverrideKind = "withdrawal"
	MaintenanceOverrideKind OverrideKind = "maintenance"
)

// AvailabilityOverride is a durable owner-written record removing a single
// date from marketplace availability. A withdrawal is deactivated by a
// restore; a maintenance record is deactivated by the nightly sweep once
// ExpiresAt passes. Bookings always take precedence during derivation.
type AvailabilityOverride struct {
	ID        uuid.UUID    `gorm:"type:uuid;primary_key;" json:"id"`
	ListingID uuid.UUID    `gorm:"type:uuid;not null;index:idx_override_listing_date" json:"listing_id"`
	Date      time.Time    `gorm:"type:date;not null;index:idx_override_listing_date" json:"date"`
	Kind      OverrideKind `gorm:"type:varchar(20);not null" json:"kind"`
	Reason    *string      `gorm:"type:text" json:"reason"`
	ExpiresAt *time.Time   `json:"expires_at"`
	IsActive  bool         `gorm:"default:true;index" json:"is_active"`

	CreatedBy string         `gorm:"not null" json:"created_by"`
	UpdatedBy *string        `json:"updated_by"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (o *AvailabilityOverride) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
