package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ambi360/ambi360-backend/internal/tours/domain"
	"github.com/ambi360/ambi360-backend/internal/validation"
)

// Unlock marks a hotspot as unlocked for a viewing session
func (h *Handler) Unlock(c *gin.Context) {
	var body unlockRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&body); verr != nil {
		writeError(c, verr, "")
		return
	}
	if !domain.ValidID(body.ProjectID) || !domain.ValidID(body.HotspotID) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "hotspot not found"})
		return
	}

	result, err := h.tracker.Unlock(c.Request.Context(), body.SessionID, body.ProjectID, body.HotspotID)
	if err != nil {
		writeError(c, err, "failed to unlock hotspot")
		return
	}
	if result == domain.UnlockForbidden {
		c.JSON(http.StatusForbidden, gin.H{
			"ok":     false,
			"result": result,
			"error":  "a previous hotspot must be unlocked first",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": result})
}

// GetProgress returns a session's unlock state for a project
func (h *Handler) GetProgress(c *gin.Context) {
	projectID, sessionID, ok := progressParams(c)
	if !ok {
		return
	}

	prog, err := h.tracker.GetProgress(c.Request.Context(), sessionID, projectID)
	if err != nil {
		writeError(c, err, "failed to get progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "progress": prog})
}

// ResetProgress clears a session's unlocks for a project
func (h *Handler) ResetProgress(c *gin.Context) {
	projectID, sessionID, ok := progressParams(c)
	if !ok {
		return
	}

	n, err := h.tracker.ResetProgress(c.Request.Context(), sessionID, projectID)
	if err != nil {
		writeError(c, err, "failed to reset progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": n})
}

func progressParams(c *gin.Context) (projectID, sessionID string, ok bool) {
	projectID, sessionID = c.Param("projectId"), c.Param("sessionId")
	if err := validation.ValidateVar(sessionID, "required,min=10,max=100,sessionid"); err != nil {
		badRequest(c, "invalid sessionId")
		return "", "", false
	}
	if !domain.ValidID(projectID) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return "", "", false
	}
	return projectID, sessionID, true
}
