package handlers

import (
	"net/http"

	"propdesk/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuditHandler struct {
	DB *gorm.DB
}

func NewAuditHandler(db *gorm.DB) *AuditHandler {
	return &AuditHandler{DB: db}
}

func (h *AuditHandler) List(c *gin.Context) {
	var logs []models.AuditLog
	err := h.DB.
		Order("created_at desc").
		Limit(200).
		Find(&logs).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
