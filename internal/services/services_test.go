package services

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"propdesk/internal/database"
	"propdesk/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDB opens a per-test in-memory database with the full schema,
// including the partial unique index on open custody entries.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createProfile(t *testing.T, db *gorm.DB, role models.Role, companyID uint) *models.Profile {
	t.Helper()

	n := seq()
	profile := &models.Profile{
		SubjectID:       fmt.Sprintf("sub-%s-%d-%d", role, companyID, n),
		Email:           fmt.Sprintf("%s%d@test.local", role, n),
		FullName:        string(role) + " tester",
		Role:            role,
		Status:          models.ProfileActive,
		CompanyID:       companyID,
		ActiveCompanyID: companyID,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}

var seqCounter int

func seq() int {
	seqCounter++
	return seqCounter
}

func createJob(t *testing.T, db *gorm.DB, companyID, staffID, createdByID uint) *models.Job {
	t.Helper()

	job := &models.Job{
		CompanyID:   companyID,
		Title:       "Deep clean unit 4B",
		Status:      models.JobPending,
		StaffID:     staffID,
		ClientID:    0,
		CreatedByID: createdByID,
	}
	if err := db.Create(job).Error; err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func createKey(t *testing.T, db *gorm.DB, companyID uint, tagCode string) *models.Key {
	t.Helper()

	key := &models.Key{
		CompanyID: companyID,
		TagCode:   tagCode,
		Status:    models.KeyAvailable,
	}
	if err := db.Create(key).Error; err != nil {
		t.Fatalf("create key: %v", err)
	}
	return key
}
