package models

import "time"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ActorID uint `json:"actor_id"`

	Entity   string `gorm:"size:50;not null" json:"entity"` // "job", "key", "invoice"
	EntityID uint   `json:"entity_id"`
	Action   string `gorm:"size:50;not null" json:"action"` // "start", "checkout" etc.
	Details  string `gorm:"type:text" json:"details"`
}
