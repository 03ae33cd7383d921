package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ambi360/ambi360-backend/internal/logging"
	"github.com/ambi360/ambi360-backend/internal/metrics"
	"github.com/ambi360/ambi360-backend/internal/tours/domain"
	"github.com/ambi360/ambi360-backend/internal/tours/scenegraph"
)

type HotspotStore interface {
	ListActiveByProject(ctx context.Context, projectID string) ([]domain.Hotspot, error)
	GetActive(ctx context.Context, id string) (*domain.Hotspot, error)
	Create(ctx context.Context, h *domain.Hotspot) error
	CreateMany(ctx context.Context, hotspots []domain.Hotspot) ([]domain.Hotspot, error)
	Save(ctx context.Context, h *domain.Hotspot) error
	SoftDelete(ctx context.Context, id string) error
}

type ProjectLookup interface {
	GetActive(ctx context.Context, id string) (*domain.Project, error)
}

// SceneCache stores built scene graphs per project and root image.
type SceneCache interface {
	Get(ctx context.Context, projectID, rootImage string) (map[string]domain.SceneDescriptor, bool, error)
	Set(ctx context.Context, projectID, rootImage string, scenes map[string]domain.SceneDescriptor) error
	Invalidate(ctx context.Context, projectID string) error
}

type HotspotService struct {
	hotspots HotspotStore
	projects ProjectLookup
	cache    SceneCache
}

// NewHotspotService wires the hotspot use cases. cache may be nil.
func NewHotspotService(hotspots HotspotStore, projects ProjectLookup, cache SceneCache) *HotspotService {
	return &HotspotService{hotspots: hotspots, projects: projects, cache: cache}
}

func (s *HotspotService) activeProject(ctx context.Context, projectID string) (*domain.Project, error) {
	if !domain.ValidID(projectID) {
		return nil, fmt.Errorf("project %q: %w", projectID, domain.ErrNotFound)
	}
	p, err := s.projects.GetActive(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", projectID, err)
	}
	return p, nil
}

// List returns the active hotspots of a project in unlock order.
func (s *HotspotService) List(ctx context.Context, projectID string) ([]domain.Hotspot, error) {
	if !domain.ValidID(projectID) {
		return nil, fmt.Errorf("project %q: %w", projectID, domain.ErrNotFound)
	}
	return s.hotspots.ListActiveByProject(ctx, projectID)
}

// Scenes builds the viewer scenes of a project. An empty rootImage uses the
// project's main image.
func (s *HotspotService) Scenes(ctx context.Context, projectID, rootImage string) (map[string]domain.SceneDescriptor, error) {
	p, err := s.activeProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if rootImage == "" {
		rootImage = p.MainImageURL
	}

	if s.cache != nil {
		scenes, ok, err := s.cache.Get(ctx, projectID, rootImage)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("project_id", projectID).Msg("scene cache read")
		} else if ok {
			metrics.SceneCacheHits.Inc()
			return scenes, nil
		}
		metrics.SceneCacheMisses.Inc()
	}

	hotspots, err := s.hotspots.ListActiveByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list hotspots: %w", err)
	}

	scenes, err := scenegraph.BuildScenes(rootImage, hotspots)
	if err != nil {
		metrics.SceneBuildsTotal.WithLabelValues("cycle").Inc()
		logging.Ctx(ctx).Error().Err(err).Str("project_id", projectID).Msg("build scenes")
		return nil, err
	}
	metrics.SceneBuildsTotal.WithLabelValues("ok").Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, projectID, rootImage, scenes); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("project_id", projectID).Msg("scene cache write")
		}
	}
	return scenes, nil
}

// Create stores a new hotspot after checking its project and parent.
func (s *HotspotService) Create(ctx context.Context, h domain.Hotspot) (*domain.Hotspot, error) {
	h.ApplyDefaults()
	h.IsActive = true
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.activeProject(ctx, h.ProjectID); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, h.ProjectID, "", h.ParentID()); err != nil {
		return nil, err
	}

	if err := s.hotspots.Create(ctx, &h); err != nil {
		return nil, err
	}
	s.invalidate(ctx, h.ProjectID)
	logging.Ctx(ctx).Info().Str("project_id", h.ProjectID).Str("hotspot_id", h.ID).Msg("hotspot created")
	return &h, nil
}

// Update applies a partial update. Moving a hotspot under a new parent is
// refused when the parent chain would loop back to it.
func (s *HotspotService) Update(ctx context.Context, id string, upd domain.HotspotUpdate) (*domain.Hotspot, error) {
	if upd.Empty() {
		return nil, domain.ErrNoFields
	}
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	if !domain.ValidID(id) {
		return nil, fmt.Errorf("hotspot %q: %w", id, domain.ErrNotFound)
	}

	current, err := s.hotspots.GetActive(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("hotspot %q: %w", id, err)
	}
	next := upd.Apply(*current)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if upd.ParentHotspotID != nil {
		if err := s.checkParent(ctx, next.ProjectID, id, next.ParentID()); err != nil {
			return nil, err
		}
	}

	if err := s.hotspots.Save(ctx, &next); err != nil {
		return nil, err
	}
	s.invalidate(ctx, next.ProjectID)
	return &next, nil
}

// Delete soft-deletes a hotspot.
func (s *HotspotService) Delete(ctx context.Context, id string) error {
	if !domain.ValidID(id) {
		return fmt.Errorf("hotspot %q: %w", id, domain.ErrNotFound)
	}
	h, err := s.hotspots.GetActive(ctx, id)
	if err != nil {
		return fmt.Errorf("hotspot %q: %w", id, err)
	}
	if err := s.hotspots.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, h.ProjectID)
	return nil
}

// Publish appends authored points to a project. Points are written parents
// first; ids are reassigned by the store.
func (s *HotspotService) Publish(ctx context.Context, projectID string, points []domain.Hotspot) ([]domain.Hotspot, error) {
	if _, err := s.activeProject(ctx, projectID); err != nil {
		return nil, err
	}
	ordered, err := scenegraph.ParentsFirst(points)
	if err != nil {
		return nil, err
	}
	for i := range ordered {
		ordered[i].ProjectID = projectID
		ordered[i].ApplyDefaults()
		if err := ordered[i].Validate(); err != nil {
			return nil, err
		}
	}

	out, err := s.hotspots.CreateMany(ctx, ordered)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, projectID)
	logging.Ctx(ctx).Info().Str("project_id", projectID).Int("hotspots", len(out)).Msg("draft published")
	return out, nil
}

func (s *HotspotService) checkParent(ctx context.Context, projectID, childID, parentID string) error {
	if parentID == "" {
		return nil
	}
	if !domain.ValidID(parentID) {
		return fmt.Errorf("parent hotspot %q: %w", parentID, domain.ErrNotFound)
	}
	siblings, err := s.hotspots.ListActiveByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("list hotspots: %w", err)
	}
	err = scenegraph.CheckParent(siblings, childID, parentID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("parent hotspot %q: %w", parentID, err)
	}
	return err
}

// invalidate drops cached scenes of a project. Failures are logged only.
func (s *HotspotService) invalidate(ctx context.Context, projectID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, projectID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("project_id", projectID).Msg("scene cache invalidate")
	}
}
