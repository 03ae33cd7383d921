package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ambi360/ambi360-backend/internal/auth"
	"github.com/ambi360/ambi360-backend/internal/drafts"
	"github.com/ambi360/ambi360-backend/internal/logging"
	"github.com/ambi360/ambi360-backend/internal/tours/domain"
	"github.com/ambi360/ambi360-backend/internal/tours/scenegraph"
	"github.com/ambi360/ambi360-backend/internal/validation"
)

func (h *Handler) ListDrafts(c *gin.Context) {
	list, err := h.drafts.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list drafts")
		return
	}
	if list == nil {
		list = []drafts.Draft{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "drafts": list})
}

func (h *Handler) CreateDraft(c *gin.Context) {
	var body createDraftRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	v, err := h.drafts.Create(c.Request.Context(), body.ProjectID, body.RootImage, auth.UserID(c))
	if err != nil {
		writeError(c, err, "failed to create draft")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "draft": v})
}

func (h *Handler) GetDraft(c *gin.Context) {
	v, err := h.drafts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to get draft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "draft": v})
}

func (h *Handler) DeleteDraft(c *gin.Context) {
	if err := h.drafts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete draft")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) GetScenes(c *gin.Context) {
	scenes, err := h.drafts.Scenes(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to build scenes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "scenes": scenes})
}

// AddPoint places a point on the scene under the cursor
func (h *Handler) AddPoint(c *gin.Context) {
	var body addPointRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	if body.Pitch == nil || body.Yaw == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "pitch and yaw are required"})
		return
	}

	v, point, err := h.drafts.AddPoint(c.Request.Context(), c.Param("id"), *body.Pitch, *body.Yaw)
	if err != nil {
		writeError(c, err, "failed to add point")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "draft": v, "point": point})
}

func (h *Handler) UpdatePoint(c *gin.Context) {
	var body scenegraph.PointUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	v, err := h.drafts.UpdatePoint(c.Request.Context(), c.Param("id"), c.Param("pointId"), body)
	if err != nil {
		writeError(c, err, "failed to update point")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "draft": v})
}

// RemovePoint deletes a point and everything nested under it
func (h *Handler) RemovePoint(c *gin.Context) {
	v, n, err := h.drafts.RemovePoint(c.Request.Context(), c.Param("id"), c.Param("pointId"))
	if err != nil {
		writeError(c, err, "failed to remove point")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "draft": v, "removed": n})
}

// ClearScene deletes every point of the scene under the cursor
func (h *Handler) ClearScene(c *gin.Context) {
	v, n, err := h.drafts.ClearScene(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to clear scene")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "draft": v, "removed": n})
}

func (h *Handler) Enter(c *gin.Context) {
	v, err := h.drafts.Enter(c.Request.Context(), c.Param("id"), c.Param("pointId"))
	if err != nil {
		writeError(c, err, "failed to enter scene")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "draft": v})
}

func (h *Handler) Back(c *gin.Context) {
	v, err := h.drafts.Back(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to go back")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "draft": v})
}

// Publish writes the draft to a project as hotspots
func (h *Handler) Publish(c *gin.Context) {
	var body publishRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
			return
		}
	}

	created, err := h.drafts.Publish(c.Request.Context(), c.Param("id"), body.ProjectID)
	if err != nil {
		writeError(c, err, "failed to publish draft")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "hotspots": created})
}

func writeError(c *gin.Context, err error, fallback string) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "validation failed", "details": verr.Fields})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNoFields), errors.Is(err, domain.ErrNotNavigable):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrCycleDetected), errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": fallback})
	}
}
