package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"propdesk/internal/apperr"
	"propdesk/internal/authz"
	"propdesk/internal/database"
	"propdesk/internal/mailer"
	"propdesk/internal/models"
	"propdesk/internal/payments"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceService is CRUD plus the payment-provider glue: a pay call creates a
// hosted checkout session, the provider's webhook marks the invoice paid.
type InvoiceService struct {
	db       *gorm.DB
	payments *payments.Client
	mail     *mailer.Mailer
	audit    *database.AuditRecorder
	log      *slog.Logger
	now      func() time.Time
}

func NewInvoiceService(db *gorm.DB, pay *payments.Client, mail *mailer.Mailer, audit *database.AuditRecorder, log *slog.Logger) *InvoiceService {
	return &InvoiceService{db: db, payments: pay, mail: mail, audit: audit, log: log, now: time.Now}
}

type InvoiceInput struct {
	ClientID    uint
	JobID       uint
	AmountCents int64
	Currency    string
	Description string
}

func (s *InvoiceService) Create(actor *models.Profile, in InvoiceInput) (*models.Invoice, error) {
	if err := authz.RequireRole(actor, models.RoleAdmin, models.RoleSuperAdmin, models.RoleStaff); err != nil {
		return nil, err
	}
	if in.AmountCents <= 0 {
		return nil, apperr.BadRequest("amount must be positive")
	}
	currency := strings.ToLower(in.Currency)
	if currency == "" {
		currency = "usd"
	}

	inv := models.Invoice{
		CompanyID:   actor.ScopeCompanyID(),
		ClientID:    in.ClientID,
		JobID:       in.JobID,
		Number:      "INV-" + strings.ToUpper(uuid.NewString()[:8]),
		AmountCents: in.AmountCents,
		Currency:    currency,
		Status:      models.InvoiceDraft,
		Description: in.Description,
	}
	if err := s.db.Create(&inv).Error; err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	s.audit.Record(actor.ID, "invoice", inv.ID, "create", "Created invoice "+inv.Number)
	return &inv, nil
}

func (s *InvoiceService) List(actor *models.Profile) ([]models.Invoice, error) {
	if actor == nil {
		return nil, apperr.ErrUnauthorized
	}
	var invoices []models.Invoice
	q := s.db.Scopes(authz.CompanyScope(actor)).Order("created_at desc")
	if actor.Role == models.RoleClient {
		q = q.Where("client_id = ?", actor.ID)
	}
	if err := q.Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// CreateCheckout opens a payment-provider checkout session for the invoice
// and returns the hosted payment URL.
func (s *InvoiceService) CreateCheckout(actor *models.Profile, invoiceID uint) (string, error) {
	var inv models.Invoice
	if err := s.db.First(&inv, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFound("Invoice not found")
		}
		return "", fmt.Errorf("load invoice %d: %w", invoiceID, err)
	}
	if err := authz.Authorize(actor, authz.ActionView, authz.InvoiceResource(&inv)); err != nil {
		return "", err
	}
	if inv.Status == models.InvoicePaid {
		return "", apperr.BadRequest("Invoice already paid")
	}
	if inv.Status == models.InvoiceVoid {
		return "", apperr.BadRequest("Invoice is void")
	}

	sess, err := s.payments.CreateCheckoutSession(&inv)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	err = s.db.Model(&inv).Updates(map[string]any{
		"checkout_session_id": sess.ID,
		"status":              models.InvoiceSent,
	}).Error
	if err != nil {
		return "", fmt.Errorf("record checkout session: %w", err)
	}

	s.audit.Record(actor.ID, "invoice", inv.ID, "checkout", "Checkout session "+sess.ID)
	return sess.URL, nil
}

// MarkPaidBySession handles the provider's completed-checkout webhook. A
// repeat delivery for an already-paid invoice is a no-op.
func (s *InvoiceService) MarkPaidBySession(sessionID string) error {
	var inv models.Invoice
	err := s.db.Where("checkout_session_id = ?", sessionID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Invoice not found")
	}
	if err != nil {
		return fmt.Errorf("load invoice by session %q: %w", sessionID, err)
	}
	if inv.Status == models.InvoicePaid {
		return nil
	}

	now := s.now()
	err = s.db.Model(&inv).Updates(map[string]any{
		"status":  models.InvoicePaid,
		"paid_at": now,
	}).Error
	if err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}

	s.audit.Record(0, "invoice", inv.ID, "paid", "Invoice "+inv.Number+" paid")
	s.log.Info("invoice paid", "invoice", inv.Number, "session", sessionID)

	var client models.Profile
	if err := s.db.First(&client, inv.ClientID).Error; err == nil && client.Email != "" {
		if err := s.mail.SendReceipt(client.Email, inv.Number, inv.AmountCents, inv.Currency); err != nil {
			s.log.Warn("failed to send receipt", "invoice", inv.Number, "err", err)
		}
	}
	return nil
}
