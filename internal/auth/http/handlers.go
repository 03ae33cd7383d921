package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ambi360/ambi360-backend/internal/auth"
	"github.com/ambi360/ambi360-backend/internal/auth/domain"
	"github.com/ambi360/ambi360-backend/internal/logging"
	"github.com/ambi360/ambi360-backend/internal/validation"
)

// Login exchanges credentials for a token
func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "token": res.Token, "expiresAt": res.ExpiresAt, "user": res.User})
}

// RegisterUser creates a back-office user
func (h *Handler) RegisterUser(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "failed to create user")
		return
	}

	logging.Ctx(c.Request.Context()).Info().
		Str("user_id", user.ID).
		Str("created_by", auth.UserID(c)).
		Msg("user registered")
	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": user})
}

// Me returns the authenticated user
func (h *Handler) Me(c *gin.Context) {
	userID := auth.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

func writeError(c *gin.Context, err error, fallback string) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "validation failed", "details": verr.Fields})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid username or password"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found"})
	case errors.Is(err, domain.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": fallback})
	}
}
