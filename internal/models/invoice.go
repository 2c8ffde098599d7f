package models

import (
	"time"

	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"
	InvoiceVoid  InvoiceStatus = "void"
)

type Invoice struct {
	gorm.Model
	CompanyID uint `gorm:"index" json:"company_id"`
	ClientID  uint `gorm:"index" json:"client_id"`
	JobID     uint `json:"job_id,omitempty"`

	Number      string        `gorm:"size:40;uniqueIndex;not null" json:"number"`
	AmountCents int64         `gorm:"not null" json:"amount_cents"`
	Currency    string        `gorm:"size:3;not null;default:'usd'" json:"currency"`
	Status      InvoiceStatus `gorm:"type:varchar(10);not null;default:'draft'" json:"status"`
	Description string        `gorm:"size:255" json:"description,omitempty"`

	// payment-provider checkout session backing this invoice, if any
	CheckoutSessionID string     `gorm:"size:255;index" json:"-"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
}
