package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"propdesk/internal/apperr"
	"propdesk/internal/authz"
	"propdesk/internal/middleware"
	"propdesk/internal/models"
	"propdesk/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type KeysHandler struct {
	DB      *gorm.DB
	Custody *services.KeyCustodyService
}

func NewKeysHandler(db *gorm.DB, custody *services.KeyCustodyService) *KeysHandler {
	return &KeysHandler{DB: db, Custody: custody}
}

type createKeyRequest struct {
	TagCode    string `json:"tag_code" binding:"required"`
	PropertyID uint   `json:"property_id"`
	UnitID     *uint  `json:"unit_id"`
	Notes      string `json:"notes"`
}

func (h *KeysHandler) Create(c *gin.Context) {
	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p := middleware.CurrentProfile(c)
	tag := strings.TrimSpace(req.TagCode)
	if tag == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tag_code is required"})
		return
	}

	key := models.Key{
		CompanyID:  p.ScopeCompanyID(),
		TagCode:    tag,
		Status:     models.KeyAvailable,
		PropertyID: req.PropertyID,
		UnitID:     req.UnitID,
		Notes:      req.Notes,
	}
	if err := h.DB.Create(&key).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, key)
}

func (h *KeysHandler) List(c *gin.Context) {
	p := middleware.CurrentProfile(c)

	q := h.DB.Scopes(authz.CompanyScope(p)).Order("tag_code asc")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var keys []models.Key
	if err := q.Find(&keys).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

type checkoutRequest struct {
	HolderLabel string `json:"holder_label"`
}

func (h *KeysHandler) Checkout(c *gin.Context) {
	p := middleware.CurrentProfile(c)
	if p == nil {
		respondError(c, apperr.ErrUnauthorized)
		return
	}

	// body is optional; only label checkouts carry one
	var req checkoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	if err := h.Custody.Checkout(c.Param("key"), p, strings.TrimSpace(req.HolderLabel)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *KeysHandler) Checkin(c *gin.Context) {
	p := middleware.CurrentProfile(c)
	if p == nil {
		respondError(c, apperr.ErrUnauthorized)
		return
	}

	if err := h.Custody.Checkin(c.Param("key"), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *KeysHandler) CustodyHistory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("key"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperr.ErrKeyNotFound)
		return
	}

	p := middleware.CurrentProfile(c)
	view, err := h.Custody.Custody(uint(id), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": view.Current, "history": view.History, "holder": view.Holder})
}

func (h *KeysHandler) ReportMissing(c *gin.Context) {
	p := middleware.CurrentProfile(c)
	if p == nil {
		respondError(c, apperr.ErrUnauthorized)
		return
	}

	if err := h.Custody.ReportMissing(c.Param("key"), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
