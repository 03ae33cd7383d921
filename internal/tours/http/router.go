package http

import "github.com/gin-gonic/gin"

// Register mounts /hotspots, /progress and /projects under rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	hotspots := rg.Group("/hotspots")
	hotspots.GET("/project/:projectId", h.ListHotspots)
	hotspots.GET("/project/:projectId/scenes", h.GetScenes)
	hotspots.POST("", h.guarded(h.CreateHotspot)...)
	hotspots.PUT("/:id", h.guarded(h.UpdateHotspot)...)
	hotspots.DELETE("/:id", h.guarded(h.DeleteHotspot)...)

	prog := rg.Group("/progress")
	prog.POST("/unlock", h.Unlock)
	prog.GET("/:projectId/events", h.StreamUnlocks)
	prog.GET("/:projectId/:sessionId", h.GetProgress)
	prog.DELETE("/:projectId/:sessionId", h.ResetProgress)

	projects := rg.Group("/projects")
	projects.GET("", h.ListProjects)
	projects.GET("/:id", h.GetProject)
	projects.POST("/:id/verify-password", h.VerifyPassword)
	projects.POST("", h.guarded(h.CreateProject)...)
	projects.PUT("/:id", h.guarded(h.UpdateProject)...)
	projects.DELETE("/:id", h.guarded(h.DeleteProject)...)
}
