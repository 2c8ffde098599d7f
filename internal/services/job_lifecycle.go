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

// JobLifecycleService owns the pending → in_progress → completed transitions
// and the activity log they write. The log is authoritative for durations;
// the columns on the job row are a mirror kept in the same transaction.
type JobLifecycleService struct {
	db    *gorm.DB
	audit *database.AuditRecorder
	log   *slog.Logger
	now   func() time.Time
}

func NewJobLifecycleService(db *gorm.DB, audit *database.AuditRecorder, log *slog.Logger) *JobLifecycleService {
	return &JobLifecycleService{db: db, audit: audit, log: log, now: time.Now}
}

type StartResult struct {
	AlreadyStarted bool
	StartedAt      time.Time
}

type StopResult struct {
	AlreadyCompleted bool
	DurationSeconds  int
	DurationMinutes  int
}

type DurationSource string

const (
	SourceOverride DurationSource = "override"
	SourceActivity DurationSource = "activity"
	SourceAuto     DurationSource = "auto"
	SourceUnknown  DurationSource = "unknown"
)

type DurationResult struct {
	Known   bool
	Seconds int
	Source  DurationSource
}

func (s *JobLifecycleService) loadJob(jobID uint) (*models.Job, error) {
	var job models.Job
	if err := s.db.First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrJobNotFound
		}
		return nil, fmt.Errorf("load job %d: %w", jobID, err)
	}
	return &job, nil
}

// Start moves a pending job into in_progress. A second start on a running job
// is a no-op success so a double click cannot corrupt state.
func (s *JobLifecycleService) Start(jobID uint, actor *models.Profile) (*StartResult, error) {
	job, err := s.loadJob(jobID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.ActionOperate, authz.JobResource(job)); err != nil {
		return nil, err
	}

	switch job.Status {
	case models.JobInProgress:
		res := &StartResult{AlreadyStarted: true}
		if job.StartedAt != nil {
			res.StartedAt = *job.StartedAt
		}
		return res, nil
	case models.JobPending:
		// legal transition
	default:
		return nil, apperr.InvalidTransition("Job cannot be started from status: %s", job.Status)
	}

	now := s.now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		entry := models.JobActivityLogEntry{
			JobID:     job.ID,
			Action:    models.ActivityStart,
			ActorID:   actor.ID,
			CreatedAt: now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append start entry: %w", err)
		}
		return tx.Model(job).Updates(map[string]any{
			"status":     models.JobInProgress,
			"started_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actor.ID, "job", job.ID, "start", "Started job: "+job.Title)
	s.log.Info("job started", "job_id", job.ID, "actor_id", actor.ID)

	return &StartResult{StartedAt: now}, nil
}

// Stop completes a running job and records the worked duration, derived from
// the open start entry in the activity log.
func (s *JobLifecycleService) Stop(jobID uint, actor *models.Profile) (*StopResult, error) {
	job, err := s.loadJob(jobID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.ActionOperate, authz.JobResource(job)); err != nil {
		return nil, err
	}

	switch job.Status {
	case models.JobCompleted:
		return &StopResult{AlreadyCompleted: true}, nil
	case models.JobPending:
		return nil, apperr.ErrNeverStarted
	case models.JobInProgress:
		// legal transition
	default:
		return nil, apperr.InvalidTransition("Job cannot be stopped from status: %s", job.Status)
	}

	start, err := s.openStartEntry(job.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	elapsed := int(now.Sub(start.CreatedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	// floor of one minute so a fast start/stop never records zero
	minutes := elapsed / 60
	if minutes < 1 {
		minutes = 1
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		entry := models.JobActivityLogEntry{
			JobID:           job.ID,
			Action:          models.ActivityStop,
			ActorID:         actor.ID,
			CreatedAt:       now,
			DurationSeconds: &elapsed,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("append stop entry: %w", err)
		}
		// the computed value is always stored; a manual override wins at
		// read time, not here
		return tx.Model(job).Updates(map[string]any{
			"status":           models.JobCompleted,
			"completed_at":     now,
			"duration_minutes": minutes,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actor.ID, "job", job.ID, "stop",
		fmt.Sprintf("Completed job: %s (%d min)", job.Title, minutes))
	s.log.Info("job completed", "job_id", job.ID, "actor_id", actor.ID, "duration_minutes", minutes)

	return &StopResult{DurationSeconds: elapsed, DurationMinutes: minutes}, nil
}

// openStartEntry finds the most recent start entry with no later stop.
func (s *JobLifecycleService) openStartEntry(jobID uint) (*models.JobActivityLogEntry, error) {
	var start models.JobActivityLogEntry
	err := s.db.
		Where("job_id = ? AND action = ?", jobID, models.ActivityStart).
		Order("id desc").
		First(&start).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNeverStarted
	}
	if err != nil {
		return nil, fmt.Errorf("load start entry: %w", err)
	}

	var laterStops int64
	err = s.db.Model(&models.JobActivityLogEntry{}).
		Where("job_id = ? AND action = ? AND id > ?", jobID, models.ActivityStop, start.ID).
		Count(&laterStops).Error
	if err != nil {
		return nil, fmt.Errorf("check stop entries: %w", err)
	}
	if laterStops > 0 {
		return nil, apperr.ErrNeverStarted
	}
	return &start, nil
}

// LastDuration reconciles the three places a duration may live, in priority
// order: manual override, recorded stop entry, started/completed column diff.
func (s *JobLifecycleService) LastDuration(jobID uint, actor *models.Profile) (*DurationResult, error) {
	job, err := s.loadJob(jobID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.ActionView, authz.JobResource(job)); err != nil {
		return nil, err
	}

	if job.ManualDurationMinutes != nil {
		return &DurationResult{
			Known:   true,
			Seconds: *job.ManualDurationMinutes * 60,
			Source:  SourceOverride,
		}, nil
	}

	var stop models.JobActivityLogEntry
	err = s.db.
		Where("job_id = ? AND action = ? AND duration_seconds IS NOT NULL", jobID, models.ActivityStop).
		Order("id desc").
		First(&stop).Error
	if err == nil && stop.DurationSeconds != nil {
		return &DurationResult{Known: true, Seconds: *stop.DurationSeconds, Source: SourceActivity}, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load stop entry: %w", err)
	}

	if job.StartedAt != nil && job.CompletedAt != nil {
		return &DurationResult{
			Known:   true,
			Seconds: int(job.CompletedAt.Sub(*job.StartedAt).Seconds()),
			Source:  SourceAuto,
		}, nil
	}

	return &DurationResult{Source: SourceUnknown}, nil
}
