package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"propdesk/internal/apperr"
	"propdesk/internal/authz"
	"propdesk/internal/database"
	"propdesk/internal/models"

	"gorm.io/gorm"
)

// KeyCustodyService maintains the custody ledger and its invariant: at most
// one open (unreturned) entry per key. The key's status column is a mirror
// updated in the same transaction; the ledger is the source of truth.
type KeyCustodyService struct {
	db    *gorm.DB
	audit *database.AuditRecorder
	log   *slog.Logger
	now   func() time.Time
}

func NewKeyCustodyService(db *gorm.DB, audit *database.AuditRecorder, log *slog.Logger) *KeyCustodyService {
	return &KeyCustodyService{db: db, audit: audit, log: log, now: time.Now}
}

type CustodyView struct {
	Current *models.KeyCustodyEntry
	History []models.KeyCustodyEntry
	// Holder names who holds the key right now, or "available".
	Holder string
}

func (s *KeyCustodyService) loadKeyByTag(tagCode string) (*models.Key, error) {
	var key models.Key
	if err := s.db.Where("tag_code = ?", tagCode).First(&key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrKeyNotFound
		}
		return nil, fmt.Errorf("load key %q: %w", tagCode, err)
	}
	return &key, nil
}

// Checkout opens a custody entry for the key. holderLabel records custody by
// something other than a staff profile (a lockbox, a contractor); when empty
// the actor themselves takes the key.
func (s *KeyCustodyService) Checkout(tagCode string, actor *models.Profile, holderLabel string) error {
	key, err := s.loadKeyByTag(tagCode)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, authz.ActionOperate, authz.KeyResource(key)); err != nil {
		return err
	}

	if key.Status != models.KeyAvailable {
		return apperr.ErrNotAvailable
	}

	now := s.now()
	entry := models.KeyCustodyEntry{
		KeyID:     key.ID,
		CompanyID: key.CompanyID,
		Action:    models.CustodyCheckout,
		CreatedAt: now,
	}
	if holderLabel != "" {
		entry.HolderType = models.HolderLabel
		entry.HolderLabel = holderLabel
	} else {
		holderID := actor.ID
		entry.HolderType = models.HolderStaff
		entry.HolderID = &holderID
		entry.HolderLabel = actor.FullName
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Self-healing: close stragglers left open by older writes. Zero rows
		// affected is the expected case.
		if err := tx.Model(&models.KeyCustodyEntry{}).
			Where("key_id = ? AND returned_at IS NULL", key.ID).
			Update("returned_at", now).Error; err != nil {
			return fmt.Errorf("close stale entries: %w", err)
		}

		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append checkout entry: %w", err)
		}
		return tx.Model(key).Update("status", models.KeyAssigned).Error
	})
	if err != nil {
		return translateCheckoutErr(err)
	}

	s.audit.Record(actor.ID, "key", key.ID, "checkout",
		fmt.Sprintf("Key %s checked out to %s", key.TagCode, entry.HolderLabel))
	s.log.Info("key checked out", "tag_code", key.TagCode, "actor_id", actor.ID)
	return nil
}

// translateCheckoutErr maps the partial unique index's rejection of a second
// open entry, raced in by a concurrent checkout, to the same refusal the
// status precondition gives.
func translateCheckoutErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.ErrNotAvailable
	}
	return err
}

// Checkin closes the open custody entry and returns the key to the pool.
func (s *KeyCustodyService) Checkin(tagCode string, actor *models.Profile) error {
	key, err := s.loadKeyByTag(tagCode)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, authz.ActionOperate, authz.KeyResource(key)); err != nil {
		return err
	}

	var open models.KeyCustodyEntry
	err = s.db.
		Where("key_id = ? AND returned_at IS NULL", key.ID).
		Order("id desc").
		First(&open).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNoActiveCheckout
	}
	if err != nil {
		return fmt.Errorf("load open entry: %w", err)
	}

	now := s.now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&open).Updates(map[string]any{
			"returned_at": now,
			"action":      models.CustodyCheckin,
		}).Error; err != nil {
			return fmt.Errorf("close entry: %w", err)
		}
		return tx.Model(key).Update("status", models.KeyAvailable).Error
	})
	if err != nil {
		return err
	}

	s.audit.Record(actor.ID, "key", key.ID, "checkin", "Key "+key.TagCode+" checked in")
	s.log.Info("key checked in", "tag_code", key.TagCode, "actor_id", actor.ID)
	return nil
}

// Custody returns the current open entry plus the full history for a key.
// When several open entries exist (stale data the checkout path has not yet
// repaired) the most recent one is authoritative.
func (s *KeyCustodyService) Custody(keyID uint, actor *models.Profile) (*CustodyView, error) {
	var key models.Key
	if err := s.db.First(&key, keyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrKeyNotFound
		}
		return nil, fmt.Errorf("load key %d: %w", keyID, err)
	}
	if err := authz.Authorize(actor, authz.ActionView, authz.KeyResource(&key)); err != nil {
		return nil, err
	}

	var history []models.KeyCustodyEntry
	if err := s.db.
		Where("key_id = ?", key.ID).
		Order("id desc").
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("load custody history: %w", err)
	}

	view := &CustodyView{History: history, Holder: "available"}
	for i := range history {
		if history[i].ReturnedAt == nil {
			view.Current = &history[i]
			view.Holder = history[i].HolderLabel
			break
		}
	}
	return view, nil
}

// ReportMissing flips the key's status; custody history is left untouched.
func (s *KeyCustodyService) ReportMissing(tagCode string, actor *models.Profile) error {
	key, err := s.loadKeyByTag(tagCode)
	if err != nil {
		return err
	}
	if err := authz.Authorize(actor, authz.ActionOperate, authz.KeyResource(key)); err != nil {
		return err
	}

	if err := s.db.Model(key).Update("status", models.KeyMissing).Error; err != nil {
		return fmt.Errorf("mark key missing: %w", err)
	}
	s.audit.Record(actor.ID, "key", key.ID, "missing", "Key "+key.TagCode+" reported missing")
	return nil
}
