// Package authz is the single place authorization decisions are made. Route
// handlers never re-implement role conditionals; they describe the resource
// and the action and ask.
package authz

import (
	"propdesk/internal/apperr"
	"propdesk/internal/models"

	"gorm.io/gorm"
)

type Action string

const (
	// ActionView covers reads; company scoping applies.
	ActionView Action = "view"
	// ActionMutate covers edits and deletes; owners and admins only.
	ActionMutate Action = "mutate"
	// ActionOperate covers lifecycle transitions (job start/stop, key
	// checkout/checkin); owners, same-company field roles, and admins.
	ActionOperate Action = "operate"
)

// Resource describes the row under decision.
type Resource struct {
	Kind      string
	CompanyID uint
	// OwnerIDs are profiles with ownership rights over the row, e.g. a job's
	// assigned staff member and its creator.
	OwnerIDs []uint
}

func JobResource(j *models.Job) Resource {
	return Resource{
		Kind:      "job",
		CompanyID: j.CompanyID,
		OwnerIDs:  []uint{j.StaffID, j.CreatedByID},
	}
}

func KeyResource(k *models.Key) Resource {
	return Resource{Kind: "key", CompanyID: k.CompanyID}
}

func InvoiceResource(inv *models.Invoice) Resource {
	return Resource{Kind: "invoice", CompanyID: inv.CompanyID, OwnerIDs: []uint{inv.ClientID}}
}

func isAdmin(p *models.Profile) bool {
	return p.Role == models.RoleAdmin || p.Role == models.RoleSuperAdmin
}

// RequireRole resolves the basic role gate: no session, disabled profile, or
// a role outside the allowed set all refuse the request.
func RequireRole(p *models.Profile, allowed ...models.Role) error {
	if p == nil {
		return apperr.ErrUnauthorized
	}
	if p.Status != models.ProfileActive {
		return apperr.ErrForbidden
	}
	for _, r := range allowed {
		if p.Role == r {
			return nil
		}
	}
	return apperr.ErrForbidden
}

// Authorize decides whether actor may perform action on res.
func Authorize(actor *models.Profile, action Action, res Resource) error {
	if actor == nil {
		return apperr.ErrUnauthorized
	}
	if actor.Status != models.ProfileActive {
		return apperr.ErrForbidden
	}
	if isAdmin(actor) {
		return nil
	}

	for _, id := range res.OwnerIDs {
		if id != 0 && id == actor.ID {
			return nil
		}
	}

	sameCompany := res.CompanyID != 0 && res.CompanyID == actor.ScopeCompanyID()

	switch action {
	case ActionView:
		if sameCompany {
			return nil
		}
	case ActionOperate:
		// resources with named owners (jobs) restrict transitions to those
		// owners; ownerless resources (keys) are open to same-company field
		// roles
		if len(res.OwnerIDs) == 0 && sameCompany &&
			(actor.Role == models.RoleStaff || actor.Role == models.RoleOwner) {
			return nil
		}
	case ActionMutate:
		// owners matched above; everyone else is refused
	}

	return apperr.ErrForbidden
}

// CompanyScope filters queries to the actor's active company. Admins bypass
// the filter.
func CompanyScope(actor *models.Profile) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor == nil {
			return db.Where("1 = 0")
		}
		if isAdmin(actor) {
			return db
		}
		return db.Where("company_id = ?", actor.ScopeCompanyID())
	}
}
