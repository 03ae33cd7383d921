package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

// ListHotspots returns the active hotspots of a project
func (h *Handler) ListHotspots(c *gin.Context) {
	hotspots, err := h.hotspots.List(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		writeError(c, err, "failed to list hotspots")
		return
	}
	if hotspots == nil {
		hotspots = []domain.Hotspot{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "hotspots": hotspots})
}

// GetScenes returns the viewer scenes keyed by panorama URL
func (h *Handler) GetScenes(c *gin.Context) {
	root := c.Query("root")
	scenes, err := h.hotspots.Scenes(c.Request.Context(), c.Param("projectId"), root)
	if err != nil {
		writeError(c, err, "failed to build scenes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "scenes": scenes})
}

// CreateHotspot adds a hotspot to a project
func (h *Handler) CreateHotspot(c *gin.Context) {
	var body domain.Hotspot
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if body.ProjectID == "" {
		badRequest(c, "project_id is required")
		return
	}

	created, err := h.hotspots.Create(c.Request.Context(), body)
	if err != nil {
		writeError(c, err, "failed to create hotspot")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "hotspot": created})
}

// UpdateHotspot applies a partial update
func (h *Handler) UpdateHotspot(c *gin.Context) {
	var body domain.HotspotUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	updated, err := h.hotspots.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		writeError(c, err, "failed to update hotspot")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "hotspot": updated})
}

// DeleteHotspot soft-deletes a hotspot
func (h *Handler) DeleteHotspot(c *gin.Context) {
	if err := h.hotspots.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete hotspot")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
