package handlers

import (
	"net/http"
	"strconv"

	"propdesk/internal/apperr"
	"propdesk/internal/middleware"
	"propdesk/internal/models"
	"propdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// ProfilesHandler covers the admin-side profile mutations.
type ProfilesHandler struct {
	Profiles *services.ProfileService
}

func NewProfilesHandler(profiles *services.ProfileService) *ProfilesHandler {
	return &ProfilesHandler{Profiles: profiles}
}

func profileIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperr.ErrProfileNotFound)
		return 0, false
	}
	return uint(id), true
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *ProfilesHandler) ChangeRole(c *gin.Context) {
	id, ok := profileIDParam(c)
	if !ok {
		return
	}
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p := middleware.CurrentProfile(c)
	if err := h.Profiles.ChangeRole(p, id, models.Role(req.Role)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type moveCompanyRequest struct {
	CompanyID uint `json:"company_id" binding:"required"`
}

func (h *ProfilesHandler) MoveCompany(c *gin.Context) {
	id, ok := profileIDParam(c)
	if !ok {
		return
	}
	var req moveCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p := middleware.CurrentProfile(c)
	if err := h.Profiles.MoveCompany(p, id, req.CompanyID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ProfilesHandler) Disable(c *gin.Context) {
	id, ok := profileIDParam(c)
	if !ok {
		return
	}

	p := middleware.CurrentProfile(c)
	if err := h.Profiles.Disable(p, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
