package scenegraph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

// EditorSession owns the points of a tour being authored and the cursor of
// the scene currently being edited. An empty cursor is the root scene.
// A session is not safe for concurrent use.
type EditorSession struct {
	rootImage string
	points    []domain.Hotspot
	cursor    string
}

// Snapshot is the serialisable state of an EditorSession.
type Snapshot struct {
	RootImage string           `json:"root_image"`
	Cursor    string           `json:"cursor"`
	Points    []domain.Hotspot `json:"points"`
}

// PointUpdate edits one point; nil fields are left untouched. An empty
// TargetImage turns the point into a marker.
type PointUpdate struct {
	Label       *string             `json:"label"`
	Description *string             `json:"description"`
	TargetImage *string             `json:"target_image"`
	Type        *domain.HotspotType `json:"type"`
	IconType    *string             `json:"icon_type"`
	Pitch       *float64            `json:"pitch"`
	Yaw         *float64            `json:"yaw"`
}

// NewEditorSession starts a session on the root scene.
func NewEditorSession(rootImage string) *EditorSession {
	return &EditorSession{rootImage: rootImage}
}

// Restore rebuilds a session from a snapshot. A cursor that no longer points
// at a navigational point falls back to the root scene.
func Restore(snap Snapshot) (*EditorSession, error) {
	points := make([]domain.Hotspot, len(snap.Points))
	copy(points, snap.Points)

	s := &EditorSession{rootImage: snap.RootImage, points: points}
	a := s.arena()
	if err := a.checkAcyclic(); err != nil {
		return nil, err
	}
	if i, ok := a.lookup(snap.Cursor); ok && a.nodes[i].Kind() == domain.KindNavigational {
		s.cursor = snap.Cursor
	}
	return s, nil
}

func (s *EditorSession) Snapshot() Snapshot {
	points := make([]domain.Hotspot, len(s.points))
	copy(points, s.points)
	return Snapshot{RootImage: s.rootImage, Cursor: s.cursor, Points: points}
}

func (s *EditorSession) arena() *arena {
	return newArena(s.points)
}

func (s *EditorSession) find(id string) (int, error) {
	for i := range s.points {
		if s.points[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("point %q: %w", id, domain.ErrNotFound)
}

// Cursor returns the id of the point whose scene is being edited, or "".
func (s *EditorSession) Cursor() string { return s.cursor }

func (s *EditorSession) RootImage() string { return s.rootImage }

// SetRootImage replaces the panorama of the root scene.
func (s *EditorSession) SetRootImage(img string) { s.rootImage = img }

// CurrentScene returns the scene id matching the cursor.
func (s *EditorSession) CurrentScene() string {
	if s.cursor == "" {
		return RootSceneID
	}
	return SceneID(s.cursor)
}

// CurrentPanorama returns the image of the scene under the cursor.
func (s *EditorSession) CurrentPanorama() string {
	if s.cursor == "" {
		return s.rootImage
	}
	if i, err := s.find(s.cursor); err == nil {
		return s.points[i].Target()
	}
	return s.rootImage
}

// All returns every point in insertion order.
func (s *EditorSession) All() []domain.Hotspot {
	out := make([]domain.Hotspot, len(s.points))
	copy(out, s.points)
	return out
}

// Points returns the points shown on the current scene, the same set
// BuildScenes lists there. A point under a marker shows on the marker's
// scene.
func (s *EditorSession) Points() []domain.Hotspot {
	a := s.arena()
	out := make([]domain.Hotspot, 0)
	for i, p := range a.nodes {
		owner, err := a.sceneParent(i)
		if err != nil {
			if p.ParentID() == s.cursor {
				out = append(out, p)
			}
			continue
		}
		id := ""
		if owner != noParent {
			id = a.nodes[owner].ID
		}
		if id == s.cursor {
			out = append(out, p)
		}
	}
	return out
}

// AddPoint places a new point on the current scene.
func (s *EditorSession) AddPoint(pitch, yaw float64) (domain.Hotspot, error) {
	p := domain.Hotspot{
		ID:              uuid.NewString(),
		ParentHotspotID: domain.StringPtr(s.cursor),
		Name:            fmt.Sprintf("Point %d", len(s.points)+1),
		Pitch:           pitch,
		Yaw:             yaw,
		HotspotType:     domain.HotspotNormal,
		IconType:        domain.DefaultIconType,
		IsActive:        true,
	}
	if err := p.Validate(); err != nil {
		return domain.Hotspot{}, err
	}
	s.points = append(s.points, p)
	return p, nil
}

// Enter moves the cursor into the scene of a navigational point and returns
// its panorama.
func (s *EditorSession) Enter(id string) (string, error) {
	i, err := s.find(id)
	if err != nil {
		return "", err
	}
	if s.points[i].Kind() != domain.KindNavigational {
		return "", fmt.Errorf("point %q: %w", id, domain.ErrNotNavigable)
	}
	s.cursor = id
	return s.points[i].Target(), nil
}

// Back moves the cursor to the scene the current one was entered from and
// returns its panorama. On the root scene it is a no-op.
func (s *EditorSession) Back() (string, error) {
	if s.cursor == "" {
		return s.rootImage, nil
	}
	a := s.arena()
	i, ok := a.lookup(s.cursor)
	if !ok {
		s.cursor = ""
		return s.rootImage, nil
	}
	p, err := a.sceneParent(i)
	if err != nil {
		return "", err
	}
	if p == noParent {
		s.cursor = ""
		return s.rootImage, nil
	}
	s.cursor = a.nodes[p].ID
	return a.nodes[p].Target(), nil
}

// Ancestry returns the ids from the root scene down to the cursor.
func (s *EditorSession) Ancestry() ([]string, error) {
	if s.cursor == "" {
		return []string{}, nil
	}
	a := s.arena()
	i, ok := a.lookup(s.cursor)
	if !ok {
		return []string{}, nil
	}
	chain, err := a.ancestors(i)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(chain)+1)
	for k := len(chain) - 1; k >= 0; k-- {
		out = append(out, a.nodes[chain[k]].ID)
	}
	return append(out, s.cursor), nil
}

// Update edits a point in place.
func (s *EditorSession) Update(id string, upd PointUpdate) (domain.Hotspot, error) {
	i, err := s.find(id)
	if err != nil {
		return domain.Hotspot{}, err
	}

	p := s.points[i]
	if upd.Label != nil {
		p.Name = *upd.Label
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.TargetImage != nil {
		p.TargetImageURL = domain.StringPtr(*upd.TargetImage)
	}
	if upd.Type != nil {
		p.HotspotType = *upd.Type
	}
	if upd.IconType != nil {
		p.IconType = *upd.IconType
	}
	if upd.Pitch != nil {
		p.Pitch = *upd.Pitch
	}
	if upd.Yaw != nil {
		p.Yaw = *upd.Yaw
	}
	if err := p.Validate(); err != nil {
		return domain.Hotspot{}, err
	}
	s.points[i] = p

	if id == s.cursor && p.Kind() != domain.KindNavigational {
		if _, err := s.Back(); err != nil {
			return domain.Hotspot{}, err
		}
	}
	return p, nil
}

// Remove deletes a point together with every point nested under it and
// returns how many were removed. A cursor inside the removed branch moves to
// the scene that contained the point.
func (s *EditorSession) Remove(id string) (int, error) {
	a := s.arena()
	i, ok := a.lookup(id)
	if !ok {
		return 0, fmt.Errorf("point %q: %w", id, domain.ErrNotFound)
	}

	fallback := ""
	if p, err := a.sceneParent(i); err != nil {
		return 0, err
	} else if p != noParent {
		fallback = a.nodes[p].ID
	}

	drop := make(map[string]bool)
	for _, n := range a.subtree(i) {
		drop[a.nodes[n].ID] = true
	}
	s.keep(func(p domain.Hotspot) bool { return !drop[p.ID] })

	if drop[s.cursor] {
		s.cursor = fallback
	}
	return len(drop), nil
}

// RemoveAll clears the current scene: its points and everything under them.
func (s *EditorSession) RemoveAll() int {
	a := s.arena()
	drop := make(map[string]bool)
	for i, p := range a.nodes {
		if p.ParentID() != s.cursor {
			continue
		}
		for _, n := range a.subtree(i) {
			drop[a.nodes[n].ID] = true
		}
	}
	s.keep(func(p domain.Hotspot) bool { return !drop[p.ID] })
	return len(drop)
}

func (s *EditorSession) keep(fn func(domain.Hotspot) bool) {
	out := s.points[:0]
	for _, p := range s.points {
		if fn(p) {
			out = append(out, p)
		}
	}
	s.points = out
}

// Scenes builds the scene graph of the session.
func (s *EditorSession) Scenes() (map[string]domain.SceneDescriptor, error) {
	return BuildScenes(s.rootImage, s.points)
}
