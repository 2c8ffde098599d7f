package services

import (
	"errors"
	"testing"
	"time"

	"propdesk/internal/apperr"
	"propdesk/internal/database"
	"propdesk/internal/models"
)

func TestStartSetsStartedAt(t *testing.T) {
	db := newTestDB(t)
	svc := NewJobLifecycleService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	job := createJob(t, db, 1, staff.ID, staff.ID)

	t1 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t1 }

	res, err := svc.Start(job.ID, staff)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if res.AlreadyStarted {
		t.Fatal("first Start() reported alreadyStarted")
	}
	if !res.StartedAt.Equal(t1) {
		t.Errorf("StartedAt = %v, want %v", res.StartedAt, t1)
	}

	var got models.Job
	if err := db.First(&got, job.ID).Error; err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if got.Status != models.JobInProgress {
		t.Errorf("status = %s, want in_progress", got.Status)
	}
	if got.StartedAt == nil {
		t.Fatal("started_at not set")
	}
	if got.CompletedAt != nil {
		t.Error("completed_at set on in_progress job")
	}

	var entries int64
	db.Model(&models.JobActivityLogEntry{}).
		Where("job_id = ? AND action = ?", job.ID, models.ActivityStart).
		Count(&entries)
	if entries != 1 {
		t.Errorf("start entries = %d, want 1", entries)
	}
}

func TestStartTwiceIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewJobLifecycleService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	job := createJob(t, db, 1, staff.ID, staff.ID)

	t1 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t1 }
	if _, err := svc.Start(job.ID, staff); err != nil {
		t.Fatalf("first Start() error: %v", err)
	}

	svc.now = func() time.Time { return t1.Add(5 * time.Minute) }
	res, err := svc.Start(job.ID, staff)
	if err != nil {
		t.Fatalf("second Start() error: %v", err)
	}
	if !res.AlreadyStarted {
		t.Fatal("second Start() did not report alreadyStarted")
	}

	var got models.Job
	db.First(&got, job.ID)
	if got.StartedAt == nil || !got.StartedAt.Equal(t1) {
		t.Errorf("started_at changed by second start: %v", got.StartedAt)
	}

	var entries int64
	db.Model(&models.JobActivityLogEntry{}).Where("job_id = ?", job.ID).Count(&entries)
	if entries != 1 {
		t.Errorf("log entries = %d, want 1", entries)
	}
}

func TestStartFromCompletedFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewJobLifecycleService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	job := createJob(t, db, 1, staff.ID, staff.ID)
	db.Model(job).Update("status", models.JobCompleted)

	_, err := svc.Start(job.ID, staff)
	if err == nil {
		t.Fatal("Start() on completed job succeeded")
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.HTTPStatus != 400 {
		t.Fatalf("expected 400 taxonomy error, got %v", err)
	}
	if want := "Job cannot be started from status: completed"; ae.Message != want {
		t.Errorf("message = %q, want %q", ae.Message, want)
	}
}

func TestStopComputesDuration(t *testing.T) {
	db := newTestDB(t)
	svc := NewJobLifecycleService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	job := createJob(t, db, 1, staff.ID, staff.ID)

	t1 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t1 }
	if _, err := svc.Start(job.ID, staff); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	svc.now = func() time.Time { return t1.Add(900 * time.Second) }
	res, err := svc.Stop(job.ID, staff)
	if err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if res.DurationSeconds != 900 {
		t.Errorf("DurationSeconds = %d, want 900", res.DurationSeconds)
	}
	if res.DurationMinutes != 15 {
		t.Errorf("DurationMinutes = %d, want 15", res.DurationMinutes)
	}

	var got models.Job
	db.First(&got, job.ID)
	if got.Status != models.JobCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	if got.StartedAt == nil || got.CompletedAt == nil {
		t.Fatal("completed job missing timestamps")
	}
	if got.CompletedAt.Before(*got.StartedAt) {
		t.Error("completed_at before started_at")
	}
	if got.DurationMinutes == nil || *got.DurationMinutes != 15 {
		t.Errorf("duration_minutes = %v, want 15", got.DurationMinutes)
	}
}

func TestStopFloorsToOneMinute(t *testing.T) {
	db := newTestDB(t)
	svc := NewJobLifecycleService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	job := createJob(t, db, 1, staff.ID, staff.ID)

	t1 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t1 }
	if _, err := svc.Start(job.ID, staff); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	svc.now = func() time.Time { return t1.Add(20 * time.Second) }
	res, err := svc.Stop(job.ID, staff)
	if err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if res.DurationSeconds != 20 {
		t.Errorf("DurationSeconds = %d, want 20", res.DurationSeconds)
	}
	if res.DurationMinutes != 1 {
		t.Errorf("DurationMinutes = %d, want 1", res.DurationMinutes)
	}
}

func TestStopNeverStarted(t *testing.T) {
	db := newTestDB(t)
	svc := NewJobLifecycleService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	job := createJob(t, db, 1, staff.ID, staff.ID)

	_, err := svc.Stop(job.ID, staff)
	if !errors.Is(err, apperr.ErrNeverStarted) {
		t.Fatalf("Stop() on pending job: got %v, want ErrNeverStarted", err)
	}
}

func TestStopTwiceIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewJobLifecycleService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	job := createJob(t, db, 1, staff.ID, staff.ID)

	if _, err := svc.Start(job.ID, staff); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if _, err := svc.Stop(job.ID, staff); err != nil {
		t.Fatalf("first Stop() error: %v", err)
	}

	res, err := svc.Stop(job.ID, staff)
	if err != nil {
		t.Fatalf("second Stop() error: %v", err)
	}
	if !res.AlreadyCompleted {
		t.Error("second Stop() did not report alreadyCompleted")
	}
}

func TestStartForbiddenForUnrelatedStaff(t *testing.T) {
	db := newTestDB(t)
	svc := NewJobLifecycleService(db, database.NewAuditRecorder(db), testLogger())
	assigned := createProfile(t, db, models.RoleStaff, 1)
	other := createProfile(t, db, models.RoleStaff, 1)
	admin := createProfile(t, db, models.RoleAdmin, 1)
	job := createJob(t, db, 1, assigned.ID, admin.ID)

	if _, err := svc.Start(job.ID, other); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("unassigned staff Start(): got %v, want ErrForbidden", err)
	}

	// admins may run any job's transitions
	if _, err := svc.Start(job.ID, admin); err != nil {
		t.Fatalf("admin Start() error: %v", err)
	}
}

func TestStartJobNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewJobLifecycleService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)

	if _, err := svc.Start(9999, staff); !errors.Is(err, apperr.ErrJobNotFound) {
		t.Fatalf("Start() on missing job: got %v, want ErrJobNotFound", err)
	}
}

func TestLastDurationPriority(t *testing.T) {
	db := newTestDB(t)
	svc := NewJobLifecycleService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	job := createJob(t, db, 1, staff.ID, staff.ID)

	// stop entry of 3000s and a manual override of 90 minutes: override wins
	secs := 3000
	db.Create(&models.JobActivityLogEntry{
		JobID:           job.ID,
		Action:          models.ActivityStop,
		ActorID:         staff.ID,
		DurationSeconds: &secs,
	})
	override := 90
	db.Model(job).Update("manual_duration_minutes", override)

	res, err := svc.LastDuration(job.ID, staff)
	if err != nil {
		t.Fatalf("LastDuration() error: %v", err)
	}
	if res.Seconds != 5400 || res.Source != SourceOverride {
		t.Errorf("got (%d, %s), want (5400, override)", res.Seconds, res.Source)
	}

	// without the override the recorded stop entry wins
	db.Model(job).Update("manual_duration_minutes", nil)
	res, err = svc.LastDuration(job.ID, staff)
	if err != nil {
		t.Fatalf("LastDuration() error: %v", err)
	}
	if res.Seconds != 3000 || res.Source != SourceActivity {
		t.Errorf("got (%d, %s), want (3000, activity)", res.Seconds, res.Source)
	}
}

func TestLastDurationAutoAndUnknown(t *testing.T) {
	db := newTestDB(t)
	svc := NewJobLifecycleService(db, database.NewAuditRecorder(db), testLogger())
	staff := createProfile(t, db, models.RoleStaff, 1)
	job := createJob(t, db, 1, staff.ID, staff.ID)

	res, err := svc.LastDuration(job.ID, staff)
	if err != nil {
		t.Fatalf("LastDuration() error: %v", err)
	}
	if res.Known || res.Source != SourceUnknown {
		t.Errorf("fresh job: got (%v, %s), want unknown", res.Known, res.Source)
	}

	// only the row timestamps exist: the column diff is the fallback
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	end := start.Add(40 * time.Minute)
	db.Model(job).Updates(map[string]any{"started_at": start, "completed_at": end})

	res, err = svc.LastDuration(job.ID, staff)
	if err != nil {
		t.Fatalf("LastDuration() error: %v", err)
	}
	if res.Seconds != 2400 || res.Source != SourceAuto {
		t.Errorf("got (%d, %s), want (2400, auto)", res.Seconds, res.Source)
	}
}
