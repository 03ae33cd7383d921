package service

import (
	"context"
	"fmt"

	"github.com/ambi360/ambi360-backend/internal/logging"
	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

type ProjectStore interface {
	ListPublic(ctx context.Context) ([]domain.Project, error)
	ListAll(ctx context.Context) ([]domain.Project, error)
	GetActive(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, np domain.NewProject, passwordHash *string) (string, error)
	Update(ctx context.Context, id string, upd domain.ProjectUpdate) error
	SoftDelete(ctx context.Context, id string) error
	PasswordHash(ctx context.Context, id string) (string, error)
}

type AccessRecorder interface {
	Record(ctx context.Context, l domain.AccessLog) error
}

// PasswordHasher hashes and checks project passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// Visit describes who opened a project. An empty SessionID skips the
// access log.
type Visit struct {
	SessionID string
	IPAddress string
	UserAgent string
}

type ProjectService struct {
	projects ProjectStore
	access   AccessRecorder
	hasher   PasswordHasher
	cache    SceneCache
}

// NewProjectService wires the project use cases. cache may be nil.
func NewProjectService(projects ProjectStore, access AccessRecorder, hasher PasswordHasher, cache SceneCache) *ProjectService {
	return &ProjectService{projects: projects, access: access, hasher: hasher, cache: cache}
}

func (s *ProjectService) ListPublic(ctx context.Context) ([]domain.Project, error) {
	return s.projects.ListPublic(ctx)
}

func (s *ProjectService) ListAll(ctx context.Context) ([]domain.Project, error) {
	return s.projects.ListAll(ctx)
}

// Get returns an active project and records the visit. A failed access log
// write does not fail the request.
func (s *ProjectService) Get(ctx context.Context, id string, visit Visit) (*domain.Project, error) {
	if !domain.ValidID(id) {
		return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}
	p, err := s.projects.GetActive(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", id, err)
	}

	if visit.SessionID != "" && s.access != nil {
		err := s.access.Record(ctx, domain.AccessLog{
			ProjectID:   id,
			UserSession: visit.SessionID,
			IPAddress:   visit.IPAddress,
			UserAgent:   visit.UserAgent,
		})
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("project_id", id).Msg("record access log")
		}
	}
	return p, nil
}

func (s *ProjectService) Create(ctx context.Context, np domain.NewProject) (*domain.Project, error) {
	if err := np.Validate(); err != nil {
		return nil, err
	}

	var hash *string
	if np.Password != "" {
		h, err := s.hasher.Hash(np.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = &h
	}

	id, err := s.projects.Create(ctx, np, hash)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("project_id", id).Str("name", np.Name).Msg("project created")
	return s.projects.GetActive(ctx, id)
}

// Update applies a partial update. An empty password removes the gate.
func (s *ProjectService) Update(ctx context.Context, id string, upd domain.ProjectUpdate) (*domain.Project, error) {
	if upd.Empty() {
		return nil, domain.ErrNoFields
	}
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	if !domain.ValidID(id) {
		return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}

	if upd.Password != nil {
		hash := ""
		if *upd.Password != "" {
			h, err := s.hasher.Hash(*upd.Password)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			hash = h
		}
		upd.PasswordHash = &hash
	}

	if err := s.projects.Update(ctx, id, upd); err != nil {
		return nil, err
	}
	if upd.MainImageURL != nil {
		s.invalidate(ctx, id)
	}
	return s.projects.GetActive(ctx, id)
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if !domain.ValidID(id) {
		return fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}
	if err := s.projects.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// VerifyPassword reports whether password opens the project. Projects
// without a password accept anything.
func (s *ProjectService) VerifyPassword(ctx context.Context, id, password string) (bool, error) {
	if !domain.ValidID(id) {
		return false, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}
	hash, err := s.projects.PasswordHash(ctx, id)
	if err != nil {
		return false, err
	}
	if hash == "" {
		return true, nil
	}
	return s.hasher.Compare(hash, password), nil
}

func (s *ProjectService) invalidate(ctx context.Context, projectID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, projectID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("project_id", projectID).Msg("scene cache invalidate")
	}
}
