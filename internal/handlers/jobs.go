package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"propdesk/internal/apperr"
	"propdesk/internal/authz"
	"propdesk/internal/database"
	"propdesk/internal/middleware"
	"propdesk/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type JobsHandler struct {
	DB    *gorm.DB
	Audit *database.AuditRecorder
}

func NewJobsHandler(db *gorm.DB, audit *database.AuditRecorder) *JobsHandler {
	return &JobsHandler{DB: db, Audit: audit}
}

func (h *JobsHandler) loadJob(c *gin.Context) (*models.Job, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperr.ErrJobNotFound)
		return nil, false
	}
	var job models.Job
	if err := h.DB.First(&job, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperr.ErrJobNotFound)
		} else {
			respondError(c, err)
		}
		return nil, false
	}
	return &job, true
}

type createJobRequest struct {
	Title         string     `json:"title" binding:"required"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	StaffID       uint       `json:"staff_id"`
	ClientID      uint       `json:"client_id"`
	PropertyID    uint       `json:"property_id"`
}

func (h *JobsHandler) Create(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p := middleware.CurrentProfile(c)
	title := strings.TrimSpace(req.Title)
	if len(title) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title must be at least 3 characters"})
		return
	}

	clientID := req.ClientID
	if p.Role == models.RoleClient {
		clientID = p.ID
	}

	job := models.Job{
		CompanyID:     p.ScopeCompanyID(),
		Title:         title,
		Status:        models.JobPending,
		ScheduledDate: req.ScheduledDate,
		StaffID:       req.StaffID,
		ClientID:      clientID,
		CreatedByID:   p.ID,
		PropertyID:    req.PropertyID,
	}
	if err := h.DB.Create(&job).Error; err != nil {
		respondError(c, err)
		return
	}

	h.Audit.Record(p.ID, "job", job.ID, "create", "Created job: "+job.Title)
	c.JSON(http.StatusCreated, job)
}

func (h *JobsHandler) List(c *gin.Context) {
	p := middleware.CurrentProfile(c)

	q := h.DB.Scopes(authz.CompanyScope(p)).Order("created_at desc")

	switch p.Role {
	case models.RoleStaff:
		q = q.Where("staff_id = ? OR created_by_id = ?", p.ID, p.ID)
	case models.RoleClient:
		q = q.Where("client_id = ? OR created_by_id = ?", p.ID, p.ID)
	}

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if staff := c.Query("staff_id"); staff != "" {
		if sid, err := strconv.Atoi(staff); err == nil && sid > 0 {
			q = q.Where("staff_id = ?", sid)
		}
	}

	var jobs []models.Job
	if err := q.Find(&jobs).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *JobsHandler) Get(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	p := middleware.CurrentProfile(c)
	if err := authz.Authorize(p, authz.ActionView, authz.JobResource(job)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

type updateJobRequest struct {
	Title                 *string    `json:"title"`
	ScheduledDate         *time.Time `json:"scheduled_date"`
	StaffID               *uint      `json:"staff_id"`
	ManualDurationMinutes *int       `json:"manual_duration_minutes"`
}

// Update edits the fields a manual edit may touch. Status is off limits here;
// transitions go through the lifecycle endpoints.
func (h *JobsHandler) Update(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}

	p := middleware.CurrentProfile(c)
	if err := authz.Authorize(p, authz.ActionMutate, authz.JobResource(job)); err != nil {
		respondError(c, err)
		return
	}

	var req updateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if len(title) < 3 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title must be at least 3 characters"})
			return
		}
		updates["title"] = title
	}
	if req.ScheduledDate != nil {
		updates["scheduled_date"] = *req.ScheduledDate
	}
	if req.StaffID != nil {
		updates["staff_id"] = *req.StaffID
	}
	if req.ManualDurationMinutes != nil {
		if *req.ManualDurationMinutes <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "manual duration must be positive"})
			return
		}
		updates["manual_duration_minutes"] = *req.ManualDurationMinutes
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, job)
		return
	}

	if err := h.DB.Model(job).Updates(updates).Error; err != nil {
		respondError(c, err)
		return
	}

	h.Audit.Record(p.ID, "job", job.ID, "update", "Edited job: "+job.Title)
	c.JSON(http.StatusOK, job)
}

// Delete hard-deletes a job; admin only (enforced at the route).
func (h *JobsHandler) Delete(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}

	p := middleware.CurrentProfile(c)
	if err := h.DB.Unscoped().Delete(job).Error; err != nil {
		respondError(c, err)
		return
	}

	h.Audit.Record(p.ID, "job", job.ID, "delete", "Deleted job: "+job.Title)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
