package models

import (
	"time"

	"gorm.io/gorm"
)

type KeyStatus string

const (
	KeyAvailable KeyStatus = "available"
	KeyAssigned  KeyStatus = "assigned"
	KeyMissing   KeyStatus = "missing"
)

// Key is a physical key or tag. Status is a denormalized mirror of the
// custody ledger, not the source of truth.
type Key struct {
	gorm.Model
	CompanyID uint `gorm:"index" json:"company_id"`

	TagCode    string    `gorm:"size:64;uniqueIndex;not null" json:"tag_code"`
	Status     KeyStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	PropertyID uint      `gorm:"index" json:"property_id"`
	UnitID     *uint     `json:"unit_id,omitempty"`
	Notes      string    `gorm:"size:255" json:"notes,omitempty"`
}

type HolderType string

const (
	HolderStaff HolderType = "staff"
	HolderLabel HolderType = "label"
)

type CustodyAction string

const (
	CustodyCheckout CustodyAction = "checkout"
	CustodyCheckin  CustodyAction = "checkin"
)

// KeyCustodyEntry is an append-only custody ledger row. At most one entry per
// key may have ReturnedAt = NULL; a partial unique index enforces it.
type KeyCustodyEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	KeyID     uint `gorm:"index;not null" json:"key_id"`
	CompanyID uint `json:"company_id"`

	HolderType  HolderType `gorm:"type:varchar(10);not null" json:"holder_type"`
	HolderID    *uint      `json:"holder_id,omitempty"`
	HolderLabel string     `gorm:"size:120" json:"holder_label"`

	Action     CustodyAction `gorm:"type:varchar(10);not null" json:"action"`
	ReturnedAt *time.Time    `gorm:"index" json:"returned_at"`
}
