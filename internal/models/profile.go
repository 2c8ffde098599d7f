package models

import "gorm.io/gorm"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
	RoleStaff      Role = "staff"
	RoleClient     Role = "client"
	RoleOwner      Role = "owner"
)

type ProfileStatus string

const (
	ProfileActive   ProfileStatus = "active"
	ProfileDisabled ProfileStatus = "disabled"
)

// Profile is the internal identity record, one per identity-provider subject.
type Profile struct {
	gorm.Model
	SubjectID string        `gorm:"size:64;uniqueIndex;not null" json:"subject_id"`
	Email     string        `gorm:"size:255;index" json:"email"`
	FullName  string        `gorm:"size:255" json:"full_name"`
	Role      Role          `gorm:"type:varchar(20);not null" json:"role"`
	Status    ProfileStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	CompanyID       uint `json:"company_id"`
	ActiveCompanyID uint `json:"active_company_id"`

	// set only for local password accounts; provider-backed profiles leave it empty
	PasswordHash string `json:"-"`
}

// ScopeCompanyID is the company the profile is currently acting under.
func (p *Profile) ScopeCompanyID() uint {
	if p.ActiveCompanyID != 0 {
		return p.ActiveCompanyID
	}
	return p.CompanyID
}
