package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ambi360/ambi360-backend/internal/tours/domain"
	"github.com/ambi360/ambi360-backend/internal/tours/progress"
	"github.com/ambi360/ambi360-backend/internal/tours/service"
)

// UnlockSubscriber streams unlock events of one project until ctx ends.
type UnlockSubscriber interface {
	Subscribe(ctx context.Context, projectID string) (<-chan domain.UnlockEvent, error)
}

// Handler serves the tour viewer and tour authoring endpoints.
type Handler struct {
	hotspots *service.HotspotService
	projects *service.ProjectService
	tracker  *progress.Tracker
	events   UnlockSubscriber
	admin    gin.HandlersChain
}

// New builds the handler. events may be nil, which disables the unlock
// stream. admin guards every mutating route.
func New(hotspots *service.HotspotService, projects *service.ProjectService, tracker *progress.Tracker, events UnlockSubscriber, admin ...gin.HandlerFunc) *Handler {
	return &Handler{
		hotspots: hotspots,
		projects: projects,
		tracker:  tracker,
		events:   events,
		admin:    admin,
	}
}

func (h *Handler) guarded(fn gin.HandlerFunc) gin.HandlersChain {
	chain := make(gin.HandlersChain, 0, len(h.admin)+1)
	chain = append(chain, h.admin...)
	return append(chain, fn)
}

type unlockRequest struct {
	ProjectID string `json:"projectId" validate:"required"`
	HotspotID string `json:"hotspotId" validate:"required"`
	SessionID string `json:"sessionId" validate:"required,min=10,max=100,sessionid"`
}

type verifyPasswordRequest struct {
	Password string `json:"password"`
}
