// Package memstore keeps projects, hotspots and progress in memory. It
// satisfies the same interfaces as the postgres repositories and backs
// handler and draft tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

type unlockKey struct {
	session, project, hotspot string
}

// DB is the shared state behind the typed stores.
type DB struct {
	mu       sync.Mutex
	projects map[string]*domain.Project
	hashes   map[string]string
	hotspots []domain.Hotspot
	unlocks  map[unlockKey]time.Time
	logs     []domain.AccessLog
	now      func() time.Time
}

func New() *DB {
	return &DB{
		projects: map[string]*domain.Project{},
		hashes:   map[string]string{},
		unlocks:  map[unlockKey]time.Time{},
		now:      time.Now,
	}
}

func (db *DB) Projects() *Projects     { return &Projects{db: db} }
func (db *DB) Hotspots() *Hotspots     { return &Hotspots{db: db} }
func (db *DB) Progress() *Progress     { return &Progress{db: db} }
func (db *DB) AccessLogs() *AccessLogs { return &AccessLogs{db: db} }

// AddProject stores p as is and returns its id, generating one if empty.
func (db *DB) AddProject(p domain.Project) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	db.projects[p.ID] = &p
	return p.ID
}

// AddHotspot stores h as is and returns its id, generating one if empty.
func (db *DB) AddHotspot(h domain.Hotspot) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = db.now()
	}
	db.hotspots = append(db.hotspots, h)
	return h.ID
}

// Logs returns a copy of the recorded access logs.
func (db *DB) Logs() []domain.AccessLog {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]domain.AccessLog(nil), db.logs...)
}

func (db *DB) activeHotspots(projectID string) []domain.Hotspot {
	var out []domain.Hotspot
	for _, h := range db.hotspots {
		if h.ProjectID == projectID && h.IsActive {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UnlockOrder != out[j].UnlockOrder {
			return out[i].UnlockOrder < out[j].UnlockOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (db *DB) summary(p domain.Project) domain.Project {
	p.TotalHotspots, p.DoorHotspots = 0, 0
	for _, h := range db.activeHotspots(p.ID) {
		p.TotalHotspots++
		if h.HotspotType == domain.HotspotDoor {
			p.DoorHotspots++
		}
	}
	p.HasPassword = db.hashes[p.ID] != ""
	return p
}

// Projects implements the project store.
type Projects struct{ db *DB }

func (s *Projects) ListPublic(context.Context) ([]domain.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []domain.Project
	for _, p := range s.db.projects {
		if p.IsActive && p.IsPublic {
			out = append(out, s.db.summary(*p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnlockOrder != out[j].UnlockOrder {
			return out[i].UnlockOrder < out[j].UnlockOrder
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Projects) ListAll(context.Context) ([]domain.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]domain.Project, 0, len(s.db.projects))
	for _, p := range s.db.projects {
		out = append(out, s.db.summary(*p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Projects) GetActive(_ context.Context, id string) (*domain.Project, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.projects[id]
	if !ok || !p.IsActive {
		return nil, domain.ErrNotFound
	}
	out := s.db.summary(*p)
	return &out, nil
}

func (s *Projects) Create(_ context.Context, np domain.NewProject, passwordHash *string) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, p := range s.db.projects {
		if p.Name == np.Name {
			return "", domain.ErrConflict
		}
	}
	now := s.db.now()
	p := &domain.Project{
		ID:           uuid.NewString(),
		Name:         np.Name,
		Title:        np.Title,
		Description:  np.Description,
		MainImageURL: np.MainImageURL,
		LogoURL:      np.LogoURL,
		IsPublic:     np.IsPublic == nil || *np.IsPublic,
		UnlockOrder:  np.UnlockOrder,
		CreatedBy:    np.CreatedBy,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.db.projects[p.ID] = p
	if passwordHash != nil {
		s.db.hashes[p.ID] = *passwordHash
	}
	return p.ID, nil
}

func (s *Projects) Update(_ context.Context, id string, upd domain.ProjectUpdate) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.projects[id]
	if !ok || !p.IsActive {
		return domain.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.MainImageURL != nil {
		p.MainImageURL = *upd.MainImageURL
	}
	if upd.LogoURL != nil {
		p.LogoURL = domain.StringPtr(*upd.LogoURL)
	}
	if upd.IsPublic != nil {
		p.IsPublic = *upd.IsPublic
	}
	if upd.UnlockOrder != nil {
		p.UnlockOrder = *upd.UnlockOrder
	}
	if upd.PasswordHash != nil {
		s.db.hashes[id] = *upd.PasswordHash
	}
	p.UpdatedAt = s.db.now()
	return nil
}

func (s *Projects) SoftDelete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.projects[id]
	if !ok || !p.IsActive {
		return domain.ErrNotFound
	}
	p.IsActive = false
	return nil
}

func (s *Projects) PasswordHash(_ context.Context, id string) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.projects[id]
	if !ok || !p.IsActive {
		return "", domain.ErrNotFound
	}
	return s.db.hashes[id], nil
}

// Hotspots implements the hotspot store.
type Hotspots struct{ db *DB }

func (s *Hotspots) ListActiveByProject(_ context.Context, projectID string) ([]domain.Hotspot, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.activeHotspots(projectID), nil
}

func (s *Hotspots) GetActive(_ context.Context, id string) (*domain.Hotspot, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, h := range s.db.hotspots {
		if h.ID == id && h.IsActive {
			return &h, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Hotspots) Create(_ context.Context, h *domain.Hotspot) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	now := s.db.now()
	h.ID = uuid.NewString()
	h.IsActive = true
	h.CreatedAt, h.UpdatedAt = now, now
	s.db.hotspots = append(s.db.hotspots, *h)
	return nil
}

// CreateMany stores hotspots in order, rewriting parent ids that refer to
// earlier entries of the batch.
func (s *Hotspots) CreateMany(ctx context.Context, hotspots []domain.Hotspot) ([]domain.Hotspot, error) {
	ids := make(map[string]string, len(hotspots))
	out := make([]domain.Hotspot, 0, len(hotspots))
	for _, h := range hotspots {
		draftID := h.ID
		if pid := h.ParentID(); pid != "" {
			mapped, ok := ids[pid]
			if !ok {
				return nil, domain.ErrNotFound
			}
			h.ParentHotspotID = &mapped
		}
		if err := s.Create(ctx, &h); err != nil {
			return nil, err
		}
		ids[draftID] = h.ID
		out = append(out, h)
	}
	return out, nil
}

func (s *Hotspots) Save(_ context.Context, h *domain.Hotspot) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.hotspots {
		if s.db.hotspots[i].ID == h.ID && s.db.hotspots[i].IsActive {
			h.UpdatedAt = s.db.now()
			s.db.hotspots[i] = *h
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Hotspots) SoftDelete(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i := range s.db.hotspots {
		if s.db.hotspots[i].ID == id && s.db.hotspots[i].IsActive {
			s.db.hotspots[i].IsActive = false
			return nil
		}
	}
	return domain.ErrNotFound
}

// Progress implements progress.Store.
type Progress struct{ db *DB }

func (s *Progress) FindActiveHotspot(_ context.Context, projectID, hotspotID string) (*domain.Hotspot, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, h := range s.db.hotspots {
		if h.ID == hotspotID && h.ProjectID == projectID && h.IsActive {
			return &h, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Progress) CountPriorUnlocks(_ context.Context, sessionID, projectID string, belowOrder int) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n := 0
	for _, h := range s.db.activeHotspots(projectID) {
		if h.UnlockOrder >= belowOrder {
			continue
		}
		if _, ok := s.db.unlocks[unlockKey{sessionID, projectID, h.ID}]; ok {
			n++
		}
	}
	return n, nil
}

func (s *Progress) InsertProgress(_ context.Context, sessionID, projectID, hotspotID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	key := unlockKey{sessionID, projectID, hotspotID}
	if _, ok := s.db.unlocks[key]; ok {
		return false, nil
	}
	s.db.unlocks[key] = s.db.now()
	return true, nil
}

func (s *Progress) ListProgress(_ context.Context, sessionID, projectID string) ([]domain.ProgressEntry, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	hotspots := s.db.activeHotspots(projectID)
	out := make([]domain.ProgressEntry, 0, len(hotspots))
	for _, h := range hotspots {
		e := domain.ProgressEntry{
			HotspotID:        h.ID,
			Name:             h.Name,
			Description:      h.Description,
			HotspotType:      h.HotspotType,
			UnlockOrder:      h.UnlockOrder,
			RequiresPrevious: h.RequiresPrevious,
		}
		if at, ok := s.db.unlocks[unlockKey{sessionID, projectID, h.ID}]; ok {
			e.Unlocked = true
			e.UnlockedAt = &at
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Progress) DeleteProgress(_ context.Context, sessionID, projectID string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for k := range s.db.unlocks {
		if k.session == sessionID && k.project == projectID {
			delete(s.db.unlocks, k)
			n++
		}
	}
	return n, nil
}

// AccessLogs implements the access recorder.
type AccessLogs struct{ db *DB }

func (s *AccessLogs) Record(_ context.Context, l domain.AccessLog) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	l.ID = int64(len(s.db.logs) + 1)
	l.AccessedAt = s.db.now()
	s.db.logs = append(s.db.logs, l)
	return nil
}
