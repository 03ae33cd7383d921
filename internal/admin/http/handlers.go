package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ambi360/ambi360-backend/internal/auth"
	authdomain "github.com/ambi360/ambi360-backend/internal/auth/domain"
	"github.com/ambi360/ambi360-backend/internal/logging"
	toursdomain "github.com/ambi360/ambi360-backend/internal/tours/domain"
	"github.com/ambi360/ambi360-backend/internal/validation"
)

// Dashboard returns the overview counters and access charts
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "dashboard": d})
}

// ListProjects returns every project, inactive ones included
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.adminService.Projects(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list projects")
		return
	}
	if projects == nil {
		projects = []toursdomain.Project{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": projects})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.adminService.Users(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list users")
		return
	}
	if users == nil {
		users = []authdomain.User{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "users": users})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var body authdomain.ChangePasswordRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	userID := c.Param("userId")
	if err := h.adminService.ChangePassword(c.Request.Context(), userID, body); err != nil {
		writeError(c, err, "failed to change password")
		return
	}
	logging.Ctx(c.Request.Context()).Info().
		Str("user_id", userID).
		Str("changed_by", auth.UserID(c)).
		Msg("password changed")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SetUserStatus enables or disables an account. Admins cannot disable
// themselves.
func (h *Handler) SetUserStatus(c *gin.Context) {
	var body authdomain.SetStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	userID := c.Param("userId")
	if body.IsActive != nil && !*body.IsActive && userID == auth.UserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "cannot deactivate your own account"})
		return
	}
	if err := h.adminService.SetUserStatus(c.Request.Context(), userID, body); err != nil {
		writeError(c, err, "failed to update user status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListLogs pages through access logs: ?limit=50&offset=0&projectId=
func (h *Handler) ListLogs(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "limit must be an integer"})
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "offset must be an integer"})
		return
	}

	page, err := h.adminService.AccessLogs(c.Request.Context(), c.Query("projectId"), limit, offset)
	if err != nil {
		writeError(c, err, "failed to list access logs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "logs": page.Logs, "total": page.Total, "limit": page.Limit, "offset": page.Offset})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeError(c *gin.Context, err error, fallback string) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "validation failed", "details": verr.Fields})
	case errors.Is(err, authdomain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found"})
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": fallback})
	}
}
