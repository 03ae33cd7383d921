package http

import (
	"github.com/gin-gonic/gin"

	"github.com/ambi360/ambi360-backend/internal/auth/service"
)

type Handler struct {
	authService *service.AuthService
	loginLimit  gin.HandlerFunc
}

// New builds the auth handler. loginLimit guards POST /login and may be nil.
func New(authService *service.AuthService, loginLimit gin.HandlerFunc) *Handler {
	return &Handler{
		authService: authService,
		loginLimit:  loginLimit,
	}
}
