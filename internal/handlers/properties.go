package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"propdesk/internal/apperr"
	"propdesk/internal/authz"
	"propdesk/internal/middleware"
	"propdesk/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PropertiesHandler struct {
	DB *gorm.DB
}

func NewPropertiesHandler(db *gorm.DB) *PropertiesHandler {
	return &PropertiesHandler{DB: db}
}

type createPropertyRequest struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Notes    string `json:"notes"`
}

func (h *PropertiesHandler) Create(c *gin.Context) {
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	p := middleware.CurrentProfile(c)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	property := models.Property{
		CompanyID: p.ScopeCompanyID(),
		Name:      name,
		Address:   req.Address,
		City:      req.City,
		Postcode:  req.Postcode,
		Notes:     req.Notes,
	}
	if err := h.DB.Create(&property).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, property)
}

func (h *PropertiesHandler) List(c *gin.Context) {
	p := middleware.CurrentProfile(c)

	var properties []models.Property
	err := h.DB.Scopes(authz.CompanyScope(p)).
		Preload("Units").
		Order("name asc").
		Find(&properties).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": properties})
}

type createUnitRequest struct {
	Label string `json:"label" binding:"required"`
	Floor string `json:"floor"`
	Notes string `json:"notes"`
}

func (h *PropertiesHandler) CreateUnit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperr.NotFound("Property not found"))
		return
	}

	var property models.Property
	if err := h.DB.First(&property, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperr.NotFound("Property not found"))
		} else {
			respondError(c, err)
		}
		return
	}

	p := middleware.CurrentProfile(c)
	res := authz.Resource{Kind: "property", CompanyID: property.CompanyID}
	if err := authz.Authorize(p, authz.ActionOperate, res); err != nil {
		respondError(c, err)
		return
	}

	var req createUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	unit := models.Unit{
		PropertyID: property.ID,
		Label:      strings.TrimSpace(req.Label),
		Floor:      req.Floor,
		Notes:      req.Notes,
	}
	if err := h.DB.Create(&unit).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, unit)
}
