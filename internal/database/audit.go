package database

import (
	"propdesk/internal/models"

	"gorm.io/gorm"
)

// AuditRecorder appends to the audit trail. Writes are best-effort: a failed
// audit insert never fails the operation it describes.
type AuditRecorder struct {
	db *gorm.DB
}

func NewAuditRecorder(db *gorm.DB) *AuditRecorder {
	return &AuditRecorder{db: db}
}

func (a *AuditRecorder) Record(actorID uint, entity string, entityID uint, action, details string) {
	if a == nil || a.db == nil {
		return
	}
	record := models.AuditLog{
		ActorID:  actorID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	_ = a.db.Create(&record).Error
}
