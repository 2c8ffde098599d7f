package services

import (
	"errors"
	"testing"
	"time"

	"propdesk/internal/apperr"
	"propdesk/internal/database"
	"propdesk/internal/models"

	"gorm.io/gorm"
)

func TestCheckoutCheckinScenario(t *testing.T) {
	db := newTestDB(t)
	svc := NewKeyCustodyService(db, database.NewAuditRecorder(db), testLogger())
	staffA := createProfile(t, db, models.RoleStaff, 1)
	staffB := createProfile(t, db, models.RoleStaff, 1)
	key := createKey(t, db, 1, "K-100")

	if err := svc.Checkout("K-100", staffA, ""); err != nil {
		t.Fatalf("Checkout() by A error: %v", err)
	}

	var got models.Key
	db.First(&got, key.ID)
	if got.Status != models.KeyAssigned {
		t.Errorf("status = %s, want assigned", got.Status)
	}

	view, err := svc.Custody(key.ID, staffA)
	if err != nil {
		t.Fatalf("Custody() error: %v", err)
	}
	if view.Holder != staffA.FullName {
		t.Errorf("holder = %q, want %q", view.Holder, staffA.FullName)
	}

	// a second checkout on the same key is refused and leaves the ledger alone
	var before int64
	db.Model(&models.KeyCustodyEntry{}).Where("key_id = ?", key.ID).Count(&before)
	if err := svc.Checkout("K-100", staffB, ""); !errors.Is(err, apperr.ErrNotAvailable) {
		t.Fatalf("Checkout() by B: got %v, want ErrNotAvailable", err)
	}
	var after int64
	db.Model(&models.KeyCustodyEntry{}).Where("key_id = ?", key.ID).Count(&after)
	if before != after {
		t.Errorf("ledger grew on refused checkout: %d -> %d", before, after)
	}

	if err := svc.Checkin("K-100", staffA); err != nil {
		t.Fatalf("Checkin() error: %v", err)
	}

	db.First(&got, key.ID)
	if got.Status != models.KeyAvailable {
		t.Errorf("status after checkin = %s, want available", got.Status)
	}

	var entry models.KeyCustodyEntry
	db.Where("key_id = ?", key.ID).Order("id desc").First(&entry)
	if entry.ReturnedAt == nil {
		t.Error("checked-in entry has no returned_at")
	}
	if entry.Action != models.CustodyCheckin {
		t.Errorf("entry action = %s, want checkin", entry.Action)
	}

	var open int64
	db.Model(&models.KeyCustodyEntry{}).
		Where("key_id = ? AND returned_at IS NULL", key.ID).
		Count(&open)
	if open != 0 {
		t.Errorf("open entries after checkin = %d, want 0", open)
	}
}

func TestCheckinWithoutCheckout(t *testing.T) {
	db := newTestDB(t)
	svc := NewKeyCustodyService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	createKey(t, db, 1, "K-200")

	if err := svc.Checkin("K-200", staff); !errors.Is(err, apperr.ErrNoActiveCheckout) {
		t.Fatalf("Checkin(): got %v, want ErrNoActiveCheckout", err)
	}
}

func TestCheckoutUnknownKey(t *testing.T) {
	db := newTestDB(t)
	svc := NewKeyCustodyService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)

	if err := svc.Checkout("NO-SUCH-KEY", staff, ""); !errors.Is(err, apperr.ErrKeyNotFound) {
		t.Fatalf("Checkout(): got %v, want ErrKeyNotFound", err)
	}
}

func TestCheckoutRepairsStaleOpenEntry(t *testing.T) {
	db := newTestDB(t)
	svc := NewKeyCustodyService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	key := createKey(t, db, 1, "K-300")

	// a straggler from an old write path: open entry but key still available
	holderID := staff.ID
	stale := models.KeyCustodyEntry{
		KeyID:      key.ID,
		CompanyID:  1,
		HolderType: models.HolderStaff,
		HolderID:   &holderID,
		Action:     models.CustodyCheckout,
		CreatedAt:  time.Now().Add(-24 * time.Hour),
	}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("seed stale entry: %v", err)
	}

	if err := svc.Checkout("K-300", staff, ""); err != nil {
		t.Fatalf("Checkout() error: %v", err)
	}

	var reloaded models.KeyCustodyEntry
	db.First(&reloaded, stale.ID)
	if reloaded.ReturnedAt == nil {
		t.Error("stale entry was not closed by checkout")
	}

	var open int64
	db.Model(&models.KeyCustodyEntry{}).
		Where("key_id = ? AND returned_at IS NULL", key.ID).
		Count(&open)
	if open != 1 {
		t.Errorf("open entries after checkout = %d, want exactly 1", open)
	}
}

func TestCheckoutWithHolderLabel(t *testing.T) {
	db := newTestDB(t)
	svc := NewKeyCustodyService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	key := createKey(t, db, 1, "K-400")

	if err := svc.Checkout("K-400", staff, "Lockbox 3"); err != nil {
		t.Fatalf("Checkout() error: %v", err)
	}

	var entry models.KeyCustodyEntry
	db.Where("key_id = ? AND returned_at IS NULL", key.ID).First(&entry)
	if entry.HolderType != models.HolderLabel {
		t.Errorf("holder type = %s, want label", entry.HolderType)
	}
	if entry.HolderLabel != "Lockbox 3" {
		t.Errorf("holder label = %q, want %q", entry.HolderLabel, "Lockbox 3")
	}
	if entry.HolderID != nil {
		t.Error("label checkout recorded a holder profile id")
	}
}

func TestCustodyViewCurrentAndHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewKeyCustodyService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	key := createKey(t, db, 1, "K-500")

	if err := svc.Checkout("K-500", staff, ""); err != nil {
		t.Fatalf("Checkout() error: %v", err)
	}
	if err := svc.Checkin("K-500", staff); err != nil {
		t.Fatalf("Checkin() error: %v", err)
	}
	if err := svc.Checkout("K-500", staff, ""); err != nil {
		t.Fatalf("second Checkout() error: %v", err)
	}

	view, err := svc.Custody(key.ID, staff)
	if err != nil {
		t.Fatalf("Custody() error: %v", err)
	}
	if len(view.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(view.History))
	}
	if view.Current == nil {
		t.Fatal("no current entry after open checkout")
	}
	if view.Current.ReturnedAt != nil {
		t.Error("current entry is closed")
	}
	if view.Holder != staff.FullName {
		t.Errorf("holder = %q, want %q", view.Holder, staff.FullName)
	}
}

func TestCustodyHolderAvailable(t *testing.T) {
	db := newTestDB(t)
	svc := NewKeyCustodyService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	key := createKey(t, db, 1, "K-600")

	view, err := svc.Custody(key.ID, staff)
	if err != nil {
		t.Fatalf("Custody() error: %v", err)
	}
	if view.Holder != "available" {
		t.Errorf("holder = %q, want %q", view.Holder, "available")
	}
	if view.Current != nil {
		t.Error("current entry on a key with no checkouts")
	}
}

func TestOpenEntryIndexAllowsOneOpenRow(t *testing.T) {
	db := newTestDB(t)
	staff := createProfile(t, db, models.RoleStaff, 1)
	key := createKey(t, db, 1, "K-800")

	holderID := staff.ID
	open := func() models.KeyCustodyEntry {
		return models.KeyCustodyEntry{
			KeyID:       key.ID,
			CompanyID:   1,
			HolderType:  models.HolderStaff,
			HolderID:    &holderID,
			HolderLabel: staff.FullName,
			Action:      models.CustodyCheckout,
		}
	}

	first := open()
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("first open entry: %v", err)
	}

	// two checkouts racing past the status precondition both try to insert an
	// open row; the index rejects the loser
	second := open()
	err := db.Create(&second).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("second open entry: got %v, want ErrDuplicatedKey", err)
	}
	if got := translateCheckoutErr(err); !errors.Is(got, apperr.ErrNotAvailable) {
		t.Errorf("translateCheckoutErr() = %v, want ErrNotAvailable", got)
	}

	// unrelated failures pass through untouched
	plain := errors.New("connection reset")
	if got := translateCheckoutErr(plain); got != plain {
		t.Errorf("translateCheckoutErr() rewrote an unrelated error: %v", got)
	}

	// closing the open entry frees the slot for the next checkout
	if err := db.Model(&first).Update("returned_at", time.Now()).Error; err != nil {
		t.Fatalf("close first entry: %v", err)
	}
	third := open()
	if err := db.Create(&third).Error; err != nil {
		t.Fatalf("open entry after checkin rejected: %v", err)
	}
}

func TestReportMissing(t *testing.T) {
	db := newTestDB(t)
	svc := NewKeyCustodyService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	key := createKey(t, db, 1, "K-700")

	if err := svc.ReportMissing("K-700", staff); err != nil {
		t.Fatalf("ReportMissing() error: %v", err)
	}

	var got models.Key
	db.First(&got, key.ID)
	if got.Status != models.KeyMissing {
		t.Errorf("status = %s, want missing", got.Status)
	}
}
