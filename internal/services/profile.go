package services

import (
	"errors"
	"fmt"
	"log/slog"

	"propdesk/internal/apperr"
	"propdesk/internal/authn"
	"propdesk/internal/authz"
	"propdesk/internal/database"
	"propdesk/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ProfileService resolves identity-provider subjects to internal profiles and
// handles the admin-side profile mutations (role change, company move,
// soft-disable).
type ProfileService struct {
	db    *gorm.DB
	audit *database.AuditRecorder
	log   *slog.Logger
}

func NewProfileService(db *gorm.DB, audit *database.AuditRecorder, log *slog.Logger) *ProfileService {
	return &ProfileService{db: db, audit: audit, log: log}
}

// ResolveSubject looks up the profile for a verified external subject id.
func (s *ProfileService) ResolveSubject(subjectID string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Where("subject_id = ?", subjectID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrProfileNotFound
		}
		return nil, fmt.Errorf("resolve subject %q: %w", subjectID, err)
	}
	return &profile, nil
}

// UpsertFromClaims creates the profile on first sign-in and backfills email
// and name on later ones. Exactly one profile exists per subject id; the
// unique index on subject_id backstops concurrent first sign-ins.
func (s *ProfileService) UpsertFromClaims(claims *authn.Claims) (*models.Profile, error) {
	role := models.Role(claims.Role)
	switch role {
	case models.RoleStaff, models.RoleClient, models.RoleOwner:
		// provider-assignable roles
	default:
		role = models.RoleClient
	}

	profile := models.Profile{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		FullName:  claims.FullName,
		Role:      role,
		Status:    models.ProfileActive,
	}
	err := s.db.Where(models.Profile{SubjectID: claims.Subject}).FirstOrCreate(&profile).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return s.ResolveSubject(claims.Subject)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	if profile.Email == "" && claims.Email != "" {
		updates := map[string]any{"email": claims.Email}
		if profile.FullName == "" {
			updates["full_name"] = claims.FullName
		}
		if err := s.db.Model(&profile).Updates(updates).Error; err != nil {
			s.log.Warn("failed to backfill profile", "subject_id", claims.Subject, "err", err)
		}
	}

	return &profile, nil
}

// Authenticate verifies a local password account (staff and admin logins).
func (s *ProfileService) Authenticate(email, password string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Where("email = ? AND password_hash <> ''", email).First(&profile).Error; err != nil {
		return nil, apperr.ErrUnauthorized
	}
	if profile.Status != models.ProfileActive {
		return nil, apperr.ErrForbidden
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrUnauthorized
	}
	return &profile, nil
}

// Load fetches a profile by internal id.
func (s *ProfileService) Load(id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile %d: %w", id, err)
	}
	return &profile, nil
}

// ChangeRole is an admin action.
func (s *ProfileService) ChangeRole(actor *models.Profile, profileID uint, role models.Role) error {
	if err := authz.RequireRole(actor, models.RoleAdmin, models.RoleSuperAdmin); err != nil {
		return err
	}
	switch role {
	case models.RoleAdmin, models.RoleSuperAdmin, models.RoleStaff, models.RoleClient, models.RoleOwner:
	default:
		return apperr.BadRequest("invalid role: " + string(role))
	}

	target, err := s.Load(profileID)
	if err != nil {
		return err
	}
	if err := s.db.Model(target).Update("role", role).Error; err != nil {
		return fmt.Errorf("change role: %w", err)
	}
	s.audit.Record(actor.ID, "profile", target.ID, "role_change", "Role set to "+string(role))
	return nil
}

// MoveCompany reassigns a profile's company affiliation; admin action.
func (s *ProfileService) MoveCompany(actor *models.Profile, profileID, companyID uint) error {
	if err := authz.RequireRole(actor, models.RoleAdmin, models.RoleSuperAdmin); err != nil {
		return err
	}
	target, err := s.Load(profileID)
	if err != nil {
		return err
	}
	var company models.Company
	if err := s.db.First(&company, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Company not found")
		}
		return fmt.Errorf("load company %d: %w", companyID, err)
	}
	err = s.db.Model(target).Updates(map[string]any{
		"company_id":        company.ID,
		"active_company_id": company.ID,
	}).Error
	if err != nil {
		return fmt.Errorf("move company: %w", err)
	}
	s.audit.Record(actor.ID, "profile", target.ID, "company_move",
		fmt.Sprintf("Moved to company %d", company.ID))
	return nil
}

// Disable soft-disables a profile. Profiles are never hard-deleted.
func (s *ProfileService) Disable(actor *models.Profile, profileID uint) error {
	if err := authz.RequireRole(actor, models.RoleAdmin, models.RoleSuperAdmin); err != nil {
		return err
	}
	target, err := s.Load(profileID)
	if err != nil {
		return err
	}
	if err := s.db.Model(target).Update("status", models.ProfileDisabled).Error; err != nil {
		return fmt.Errorf("disable profile: %w", err)
	}
	s.audit.Record(actor.ID, "profile", target.ID, "disable", "Profile disabled")
	return nil
}
