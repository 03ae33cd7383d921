package http

import "github.com/gin-gonic/gin"

// Register registers the public auth routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	if h.loginLimit != nil {
		rg.POST("/login", h.loginLimit, h.Login)
	} else {
		rg.POST("/login", h.Login)
	}
}

// RegisterAuthenticated registers routes behind RequireAuth.
func (h *Handler) RegisterAuthenticated(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
}

// RegisterAdmin registers routes behind RequireAuth and RequireAdmin.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.POST("/register", h.RegisterUser)
}
