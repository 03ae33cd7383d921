package http

import "github.com/gin-gonic/gin"

// Register registers the draft editor routes. The group must already
// require the admin role.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.ListDrafts)
	rg.POST("", h.CreateDraft)
	rg.GET("/:id", h.GetDraft)
	rg.DELETE("/:id", h.DeleteDraft)
	rg.GET("/:id/scenes", h.GetScenes)

	rg.POST("/:id/points", h.AddPoint)
	rg.PUT("/:id/points/:pointId", h.UpdatePoint)
	rg.DELETE("/:id/points/:pointId", h.RemovePoint)
	rg.DELETE("/:id/points", h.ClearScene)

	rg.POST("/:id/enter/:pointId", h.Enter)
	rg.POST("/:id/back", h.Back)
	rg.POST("/:id/publish", h.Publish)
}
