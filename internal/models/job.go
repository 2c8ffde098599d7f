package models

import (
	"time"

	"gorm.io/gorm"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
)

// Job is a scheduled unit of work (a cleaning visit, a maintenance call).
// Status moves only through the lifecycle service's guarded transitions.
type Job struct {
	gorm.Model
	CompanyID uint `gorm:"index" json:"company_id"`

	Title         string     `gorm:"size:255;not null" json:"title"`
	Status        JobStatus  `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`

	StaffID     uint `gorm:"index" json:"staff_id"`
	ClientID    uint `gorm:"index" json:"client_id"`
	CreatedByID uint `json:"created_by_id"`
	PropertyID  uint `json:"property_id,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// DurationMinutes is always written by the stop transition; the manual
	// override wins at read time only.
	DurationMinutes       *int `json:"duration_minutes,omitempty"`
	ManualDurationMinutes *int `json:"manual_duration_minutes,omitempty"`
}

type JobActivityAction string

const (
	ActivityStart JobActivityAction = "start"
	ActivityStop  JobActivityAction = "stop"
)

// JobActivityLogEntry is an append-only start/stop ledger row. Never updated
// or deleted; durations are derived from it.
type JobActivityLogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	JobID   uint              `gorm:"index;not null" json:"job_id"`
	Action  JobActivityAction `gorm:"type:varchar(10);not null" json:"action"`
	ActorID uint              `json:"actor_id"`

	// present on stop entries only
	DurationSeconds *int `json:"duration_seconds,omitempty"`
}
