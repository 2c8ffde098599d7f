package models

import "gorm.io/gorm"

type Company struct {
	gorm.Model
	Name         string `gorm:"size:255;not null" json:"name"`
	ContactEmail string `gorm:"size:255" json:"contact_email"`
	ContactPhone string `gorm:"size:50" json:"contact_phone"`
	Notes        string `gorm:"type:text" json:"notes,omitempty"`

	Properties []Property `json:"properties,omitempty"`
}

type Property struct {
	gorm.Model
	CompanyID uint   `gorm:"index;not null" json:"company_id"`
	Name      string `gorm:"size:255;not null" json:"name"`
	Address   string `gorm:"size:255" json:"address"`
	City      string `gorm:"size:100" json:"city"`
	Postcode  string `gorm:"size:20" json:"postcode"`
	Notes     string `gorm:"type:text" json:"notes,omitempty"`

	Units []Unit `json:"units,omitempty"`
}

// Unit is a tenant-addressable space inside a property.
type Unit struct {
	gorm.Model
	PropertyID uint   `gorm:"index;not null" json:"property_id"`
	Label      string `gorm:"size:100;not null" json:"label"`
	Floor      string `gorm:"size:20" json:"floor"`
	Notes      string `gorm:"type:text" json:"notes,omitempty"`
}
