package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ambi360/ambi360-backend/internal/auth"
	"github.com/ambi360/ambi360-backend/internal/tours/domain"
	"github.com/ambi360/ambi360-backend/internal/tours/service"
	"github.com/ambi360/ambi360-backend/internal/validation"
)

// ListProjects returns the public active projects
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.projects.ListPublic(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list projects")
		return
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": projects})
}

// GetProject returns one project. A sessionId query parameter records the visit.
func (h *Handler) GetProject(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID != "" {
		if err := validation.ValidateVar(sessionID, "min=10,max=100,sessionid"); err != nil {
			badRequest(c, "invalid sessionId")
			return
		}
	}

	project, err := h.projects.Get(c.Request.Context(), c.Param("id"), service.Visit{
		SessionID: sessionID,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		writeError(c, err, "failed to get project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": project})
}

// VerifyPassword checks the password gate of a project
func (h *Handler) VerifyPassword(c *gin.Context) {
	var body verifyPasswordRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ok, err := h.projects.VerifyPassword(c.Request.Context(), c.Param("id"), body.Password)
	if err != nil {
		writeError(c, err, "failed to verify password")
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "valid": false, "error": "incorrect password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "valid": true})
}

// CreateProject creates a project owned by the caller
func (h *Handler) CreateProject(c *gin.Context) {
	var body domain.NewProject
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if uid := auth.UserID(c); uid != "" {
		body.CreatedBy = &uid
	}

	project, err := h.projects.Create(c.Request.Context(), body)
	if err != nil {
		writeError(c, err, "failed to create project")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": project})
}

// UpdateProject applies a partial update
func (h *Handler) UpdateProject(c *gin.Context) {
	var body domain.ProjectUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	project, err := h.projects.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		writeError(c, err, "failed to update project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": project})
}

// DeleteProject soft-deletes a project
func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
