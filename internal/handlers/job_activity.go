package handlers

import (
	"net/http"
	"strconv"

	"propdesk/internal/apperr"
	"propdesk/internal/middleware"
	"propdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// JobActivityHandler exposes the job timer: start, stop, last-duration.
type JobActivityHandler struct {
	Lifecycle *services.JobLifecycleService
}

func NewJobActivityHandler(lifecycle *services.JobLifecycleService) *JobActivityHandler {
	return &JobActivityHandler{Lifecycle: lifecycle}
}

type startRequest struct {
	JobID uint `json:"jobId" binding:"required"`
}

func (h *JobActivityHandler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p := middleware.CurrentProfile(c)
	if p == nil {
		respondError(c, apperr.ErrUnauthorized)
		return
	}

	res, err := h.Lifecycle.Start(req.JobID, p)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.AlreadyStarted {
		c.JSON(http.StatusOK, gin.H{"success": true, "alreadyStarted": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "started_at": res.StartedAt})
}

// older clients send job_id, newer ones jobId; both are accepted
type stopRequest struct {
	JobID    uint `json:"jobId"`
	JobIDAlt uint `json:"job_id"`
}

func (h *JobActivityHandler) Stop(c *gin.Context) {
	var req stopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	jobID := req.JobID
	if jobID == 0 {
		jobID = req.JobIDAlt
	}
	if jobID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id is required"})
		return
	}

	p := middleware.CurrentProfile(c)
	if p == nil {
		respondError(c, apperr.ErrUnauthorized)
		return
	}

	res, err := h.Lifecycle.Stop(jobID, p)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.AlreadyCompleted {
		c.JSON(http.StatusOK, gin.H{"success": true, "alreadyCompleted": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"status":          "completed",
		"durationSeconds": res.DurationSeconds,
		"durationMinutes": res.DurationMinutes,
	})
}

func (h *JobActivityHandler) LastDuration(c *gin.Context) {
	jobID, err := strconv.ParseUint(c.Query("job_id"), 10, 64)
	if err != nil || jobID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id is required"})
		return
	}

	p := middleware.CurrentProfile(c)
	if p == nil {
		respondError(c, apperr.ErrUnauthorized)
		return
	}

	res, err := h.Lifecycle.LastDuration(uint(jobID), p)
	if err != nil {
		respondError(c, err)
		return
	}
	if !res.Known {
		c.JSON(http.StatusOK, gin.H{"duration": nil, "source": res.Source})
		return
	}
	c.JSON(http.StatusOK, gin.H{"duration": res.Seconds, "source": res.Source})
}
