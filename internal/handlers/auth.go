package handlers

import (
	"net/http"

	"propdesk/internal/apperr"
	"propdesk/internal/authn"
	"propdesk/internal/middleware"
	"propdesk/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Profiles *services.ProfileService
	Verifier *authn.Verifier
}

func NewAuthHandler(profiles *services.ProfileService, verifier *authn.Verifier) *AuthHandler {
	return &AuthHandler{Profiles: profiles, Verifier: verifier}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates a local password account and opens a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.Profiles.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	sess := sessions.Default(c)
	sess.Set("profile_id", profile.ID)
	if err := sess.Save(); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}

type callbackRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// Callback exchanges an identity-provider token for a session, creating the
// profile on first sign-in.
func (h *AuthHandler) Callback(c *gin.Context) {
	var req callbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	claims, err := h.Verifier.Verify(req.AccessToken)
	if err != nil {
		respondError(c, apperr.ErrUnauthorized)
		return
	}

	profile, err := h.Profiles.UpsertFromClaims(claims)
	if err != nil {
		respondError(c, err)
		return
	}

	sess := sessions.Default(c)
	sess.Set("profile_id", profile.ID)
	if err := sess.Save(); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.CurrentProfile(c)
	if p == nil {
		respondError(c, apperr.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}
