package drafts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ambi360/ambi360-backend/internal/logging"
	"github.com/ambi360/ambi360-backend/internal/tours/domain"
	"github.com/ambi360/ambi360-backend/internal/tours/scenegraph"
)

// Publisher writes authored points to a project.
type Publisher interface {
	Publish(ctx context.Context, projectID string, points []domain.Hotspot) ([]domain.Hotspot, error)
}

// View is what the editor renders for a draft: the scene under the cursor
// and the points placed on it.
type View struct {
	ID              string           `json:"id"`
	ProjectID       string           `json:"project_id,omitempty"`
	RootImage       string           `json:"root_image"`
	Cursor          string           `json:"cursor"`
	CurrentScene    string           `json:"current_scene"`
	CurrentPanorama string           `json:"current_panorama"`
	Ancestry        []string         `json:"ancestry"`
	Points          []domain.Hotspot `json:"points"`
	TotalPoints     int              `json:"total_points"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Service drives editor sessions stored as drafts. Mutations of one process
// are serialised; drafts are not meant to be edited from several servers at
// once.
type Service struct {
	store     Store
	publisher Publisher
	mu        sync.Mutex
	now       func() time.Time
}

func NewService(store Store, publisher Publisher) *Service {
	return &Service{store: store, publisher: publisher, now: time.Now}
}

func view(d *Draft, s *scenegraph.EditorSession) (*View, error) {
	ancestry, err := s.Ancestry()
	if err != nil {
		return nil, err
	}
	return &View{
		ID:              d.ID,
		ProjectID:       d.ProjectID,
		RootImage:       s.RootImage(),
		Cursor:          s.Cursor(),
		CurrentScene:    s.CurrentScene(),
		CurrentPanorama: s.CurrentPanorama(),
		Ancestry:        ancestry,
		Points:          s.Points(),
		TotalPoints:     len(s.All()),
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

// Create starts a draft on rootImage. projectID is optional until publish.
func (s *Service) Create(ctx context.Context, projectID, rootImage, createdBy string) (*View, error) {
	rootImage = strings.TrimSpace(rootImage)
	if rootImage == "" {
		return nil, domain.NewValidationError("rootImage", "rootImage is required")
	}
	if projectID != "" && !domain.ValidID(projectID) {
		return nil, fmt.Errorf("project %q: %w", projectID, domain.ErrNotFound)
	}

	session := scenegraph.NewEditorSession(rootImage)
	now := s.now().UTC()
	d := &Draft{
		ID:        domain.NewID("draft"),
		ProjectID: projectID,
		CreatedBy: createdBy,
		Session:   session.Snapshot(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, d); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("draft_id", d.ID).Str("project_id", projectID).Msg("draft created")
	return view(d, session)
}

func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	d, session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return view(d, session)
}

func (s *Service) List(ctx context.Context) ([]Draft, error) {
	return s.store.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Scenes builds the scene graph the draft would publish.
func (s *Service) Scenes(ctx context.Context, id string) (map[string]domain.SceneDescriptor, error) {
	_, session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.Scenes()
}

func (s *Service) AddPoint(ctx context.Context, id string, pitch, yaw float64) (*View, *domain.Hotspot, error) {
	var added domain.Hotspot
	v, err := s.mutate(ctx, id, func(session *scenegraph.EditorSession) error {
		p, err := session.AddPoint(pitch, yaw)
		added = p
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return v, &added, nil
}

func (s *Service) UpdatePoint(ctx context.Context, id, pointID string, upd scenegraph.PointUpdate) (*View, error) {
	return s.mutate(ctx, id, func(session *scenegraph.EditorSession) error {
		_, err := session.Update(pointID, upd)
		return err
	})
}

// RemovePoint deletes a point and its nested points.
func (s *Service) RemovePoint(ctx context.Context, id, pointID string) (*View, int, error) {
	var n int
	v, err := s.mutate(ctx, id, func(session *scenegraph.EditorSession) error {
		var err error
		n, err = session.Remove(pointID)
		return err
	})
	return v, n, err
}

// ClearScene deletes every point of the current scene.
func (s *Service) ClearScene(ctx context.Context, id string) (*View, int, error) {
	var n int
	v, err := s.mutate(ctx, id, func(session *scenegraph.EditorSession) error {
		n = session.RemoveAll()
		return nil
	})
	return v, n, err
}

func (s *Service) Enter(ctx context.Context, id, pointID string) (*View, error) {
	return s.mutate(ctx, id, func(session *scenegraph.EditorSession) error {
		_, err := session.Enter(pointID)
		return err
	})
}

func (s *Service) Back(ctx context.Context, id string) (*View, error) {
	return s.mutate(ctx, id, func(session *scenegraph.EditorSession) error {
		_, err := session.Back()
		return err
	})
}

// Publish writes the draft's points to projectID, or to the draft's own
// project when projectID is empty, and removes the draft.
func (s *Service) Publish(ctx context.Context, id, projectID string) ([]domain.Hotspot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if projectID == "" {
		projectID = d.ProjectID
	}
	if projectID == "" {
		return nil, domain.NewValidationError("projectId", "projectId is required to publish")
	}
	points := session.All()
	if len(points) == 0 {
		return nil, domain.NewValidationError("points", "draft has no points")
	}

	created, err := s.publisher.Publish(ctx, projectID, points)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("draft_id", id).Msg("delete published draft")
	}
	return created, nil
}

func (s *Service) load(ctx context.Context, id string) (*Draft, *scenegraph.EditorSession, error) {
	d, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	session, err := scenegraph.Restore(d.Session)
	if err != nil {
		return nil, nil, fmt.Errorf("restore draft %q: %w", id, err)
	}
	return d, session, nil
}

// mutate loads a draft, applies fn and saves it back when fn succeeds.
func (s *Service) mutate(ctx context.Context, id string, fn func(*scenegraph.EditorSession) error) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}

	d.Session = session.Snapshot()
	d.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, d); err != nil {
		return nil, err
	}
	return view(d, session)
}
