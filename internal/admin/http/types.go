package http

import "github.com/ambi360/ambi360-backend/internal/admin/service"

type Handler struct {
	adminService *service.AdminService
}

func New(adminService *service.AdminService) *Handler {
	return &Handler{adminService: adminService}
}
