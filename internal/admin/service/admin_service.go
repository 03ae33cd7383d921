package service

import (
	"context"
	"fmt"

	"github.com/ambi360/ambi360-backend/internal/admin/domain"
	authdomain "github.com/ambi360/ambi360-backend/internal/auth/domain"
	toursdomain "github.com/ambi360/ambi360-backend/internal/tours/domain"
)

type StatsStore interface {
	Counts(ctx context.Context) (projects, hotspots, users int, err error)
	TopProjects(ctx context.Context, days, limit int) ([]domain.ProjectAccess, error)
	DailyAccess(ctx context.Context, days int) ([]domain.DailyAccess, error)
}

type AccessLogLister interface {
	List(ctx context.Context, projectID string, limit, offset int) ([]toursdomain.AccessLog, int, error)
}

type ProjectLister interface {
	ListAll(ctx context.Context) ([]toursdomain.Project, error)
}

type UserAdmin interface {
	ListUsers(ctx context.Context) ([]authdomain.User, error)
	ChangePassword(ctx context.Context, userID string, req authdomain.ChangePasswordRequest) error
	SetStatus(ctx context.Context, userID string, req authdomain.SetStatusRequest) error
}

// AdminService backs the back-office endpoints.
type AdminService struct {
	stats    StatsStore
	logs     AccessLogLister
	projects ProjectLister
	users    UserAdmin
}

func NewAdminService(stats StatsStore, logs AccessLogLister, projects ProjectLister, users UserAdmin) *AdminService {
	return &AdminService{stats: stats, logs: logs, projects: projects, users: users}
}

func (s *AdminService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	var d domain.Dashboard
	var err error

	d.ActiveProjects, d.ActiveHotspots, d.ActiveUsers, err = s.stats.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("counts: %w", err)
	}
	if d.TopProjects, err = s.stats.TopProjects(ctx, domain.TopProjectsDays, domain.TopProjectsLimit); err != nil {
		return nil, fmt.Errorf("top projects: %w", err)
	}
	if d.DailyAccess, err = s.stats.DailyAccess(ctx, domain.DailyAccessDays); err != nil {
		return nil, fmt.Errorf("daily access: %w", err)
	}
	return &d, nil
}

func (s *AdminService) Projects(ctx context.Context) ([]toursdomain.Project, error) {
	return s.projects.ListAll(ctx)
}

func (s *AdminService) Users(ctx context.Context) ([]authdomain.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *AdminService) ChangePassword(ctx context.Context, userID string, req authdomain.ChangePasswordRequest) error {
	return s.users.ChangePassword(ctx, userID, req)
}

func (s *AdminService) SetUserStatus(ctx context.Context, userID string, req authdomain.SetStatusRequest) error {
	return s.users.SetStatus(ctx, userID, req)
}

// LogPage is one page of access logs.
type LogPage struct {
	Logs   []toursdomain.AccessLog `json:"logs"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

// AccessLogs pages through access logs. limit is clamped to
// [1, MaxLogLimit] with DefaultLogLimit for zero; a negative offset is 0.
// A projectID that is not a valid id matches nothing.
func (s *AdminService) AccessLogs(ctx context.Context, projectID string, limit, offset int) (*LogPage, error) {
	switch {
	case limit <= 0:
		limit = domain.DefaultLogLimit
	case limit > domain.MaxLogLimit:
		limit = domain.MaxLogLimit
	}
	if offset < 0 {
		offset = 0
	}
	page := &LogPage{Logs: []toursdomain.AccessLog{}, Limit: limit, Offset: offset}
	if projectID != "" && !toursdomain.ValidID(projectID) {
		return page, nil
	}

	logs, total, err := s.logs.List(ctx, projectID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list access logs: %w", err)
	}
	if logs != nil {
		page.Logs = logs
	}
	page.Total = total
	return page, nil
}
