package http

import "github.com/gin-gonic/gin"

// Register registers the admin routes. The group must already require the
// admin role.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Dashboard)
	rg.GET("/projects", h.ListProjects)
	rg.GET("/users", h.ListUsers)
	rg.PUT("/users/:userId/password", h.ChangePassword)
	rg.PUT("/users/:userId/status", h.SetUserStatus)
	rg.GET("/logs", h.ListLogs)
}
