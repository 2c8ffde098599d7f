package database

import (
	"log/slog"
	"time"

	"propdesk/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the database with retries and returns the handle. Nothing in
// this package keeps a global; callers inject the *gorm.DB where it is needed.
func Connect(dsn string, log *slog.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Info("connecting to database", "attempt", i, "max", maxAttempts)

		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			log.Info("connected to database")
			return db, nil
		}

		log.Warn("database connection failed", "err", err)
		time.Sleep(2 * time.Second)
	}

	return nil, err
}

// Migrate creates the schema plus the indexes AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Profile{},
		&models.Company{},
		&models.Property{},
		&models.Unit{},
		&models.Job{},
		&models.JobActivityLogEntry{},
		&models.Key{},
		&models.KeyCustodyEntry{},
		&models.Invoice{},
		&models.AuditLog{},
	)
	if err != nil {
		return err
	}

	// At most one open custody entry per key. Concurrent checkouts race on the
	// read-then-insert sequence; this index makes the database reject the
	// loser, which the custody service translates to NotAvailable.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_key_custody_open
		 ON key_custody_entries (key_id) WHERE returned_at IS NULL`,
	).Error
}

// Seed creates the default company and admin profile on first boot.
func Seed(db *gorm.DB, adminEmail, adminPassword string, log *slog.Logger) {
	if adminEmail == "" {
		adminEmail = "admin@propdesk.local"
	}
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var count int64
	if err := db.Model(&models.Profile{}).
		Where("role IN ?", []models.Role{models.RoleAdmin, models.RoleSuperAdmin}).
		Count(&count).Error; err != nil {
		log.Error("failed to check admin profile", "err", err)
		return
	}
	if count > 0 {
		return
	}

	company := models.Company{Name: "Default Company"}
	if err := db.Create(&company).Error; err != nil {
		log.Error("failed to create default company", "err", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash default admin password", "err", err)
		return
	}

	admin := models.Profile{
		SubjectID:       "local|" + adminEmail,
		Email:           adminEmail,
		FullName:        "Administrator",
		Role:            models.RoleAdmin,
		Status:          models.ProfileActive,
		CompanyID:       company.ID,
		ActiveCompanyID: company.ID,
		PasswordHash:    string(hash),
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Error("failed to create default admin", "err", err)
		return
	}

	log.Info("created default admin profile", "email", adminEmail)
}
