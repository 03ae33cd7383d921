package http

import "github.com/ambi360/ambi360-backend/internal/drafts"

type Handler struct {
	drafts *drafts.Service
}

func New(svc *drafts.Service) *Handler {
	return &Handler{drafts: svc}
}

type createDraftRequest struct {
	ProjectID string `json:"projectId"`
	RootImage string `json:"rootImage"`
}

type addPointRequest struct {
	Pitch *float64 `json:"pitch"`
	Yaw   *float64 `json:"yaw"`
}

type publishRequest struct {
	ProjectID string `json:"projectId"`
}
