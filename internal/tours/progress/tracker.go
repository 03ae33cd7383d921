// Package progress gates hotspot unlocking behind each project's unlock
// order and records what every viewing session has unlocked.
package progress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ambi360/ambi360-backend/internal/logging"
	"github.com/ambi360/ambi360-backend/internal/metrics"
	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

// Store is the persistence the tracker needs. InsertProgress must be a single
// atomic insert-or-ignore on (session, project, hotspot) and reports whether
// a row was written.
type Store interface {
	FindActiveHotspot(ctx context.Context, projectID, hotspotID string) (*domain.Hotspot, error)
	CountPriorUnlocks(ctx context.Context, sessionID, projectID string, belowOrder int) (int, error)
	InsertProgress(ctx context.Context, sessionID, projectID, hotspotID string) (bool, error)
	ListProgress(ctx context.Context, sessionID, projectID string) ([]domain.ProgressEntry, error)
	DeleteProgress(ctx context.Context, sessionID, projectID string) (int64, error)
}

// EventPublisher is notified of first-time unlocks.
type EventPublisher interface {
	PublishUnlock(ctx context.Context, ev domain.UnlockEvent) error
}

type Tracker struct {
	store  Store
	events EventPublisher
	now    func() time.Time
}

// NewTracker builds a tracker. events may be nil.
func NewTracker(store Store, events EventPublisher) *Tracker {
	return &Tracker{store: store, events: events, now: time.Now}
}

func gated(h domain.Hotspot) bool {
	return h.RequiresPrevious && h.UnlockOrder > 0
}

// CanUnlock reports whether h may be unlocked by a session that already
// unlocked the given hotspots. Any single earlier unlock in the same project
// satisfies the prerequisite.
func CanUnlock(h domain.Hotspot, unlocked []domain.Hotspot) bool {
	if !gated(h) {
		return true
	}
	for _, u := range unlocked {
		if u.ProjectID == h.ProjectID && u.UnlockOrder < h.UnlockOrder {
			return true
		}
	}
	return false
}

// Unlock records that sessionID unlocked hotspotID. It returns
// domain.ErrNotFound when the hotspot is not an active hotspot of projectID,
// UnlockForbidden when the prerequisite is not met, and UnlockSuccess
// otherwise, including when the hotspot was already unlocked.
func (t *Tracker) Unlock(ctx context.Context, sessionID, projectID, hotspotID string) (domain.UnlockResult, error) {
	h, err := t.store.FindActiveHotspot(ctx, projectID, hotspotID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.UnlocksTotal.WithLabelValues("not_found").Inc()
		} else {
			metrics.UnlocksTotal.WithLabelValues("error").Inc()
		}
		return "", fmt.Errorf("find hotspot: %w", err)
	}

	if gated(*h) {
		prior, err := t.store.CountPriorUnlocks(ctx, sessionID, projectID, h.UnlockOrder)
		if err != nil {
			metrics.UnlocksTotal.WithLabelValues("error").Inc()
			return "", fmt.Errorf("count prior unlocks: %w", err)
		}
		if prior == 0 {
			metrics.UnlocksTotal.WithLabelValues("forbidden").Inc()
			return domain.UnlockForbidden, nil
		}
	}

	inserted, err := t.store.InsertProgress(ctx, sessionID, projectID, hotspotID)
	if err != nil {
		metrics.UnlocksTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("insert progress: %w", err)
	}
	metrics.UnlocksTotal.WithLabelValues("success").Inc()

	if inserted && t.events != nil {
		ev := domain.UnlockEvent{
			ProjectID:  projectID,
			HotspotID:  hotspotID,
			SessionID:  sessionID,
			UnlockedAt: t.now().UTC(),
		}
		if err := t.events.PublishUnlock(ctx, ev); err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Str("project_id", projectID).
				Str("hotspot_id", hotspotID).
				Msg("publish unlock event")
		}
	}

	return domain.UnlockSuccess, nil
}

// GetProgress lists the project's active hotspots in unlock order with the
// session's unlock state.
func (t *Tracker) GetProgress(ctx context.Context, sessionID, projectID string) (*domain.Progress, error) {
	entries, err := t.store.ListProgress(ctx, sessionID, projectID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	if entries == nil {
		entries = []domain.ProgressEntry{}
	}
	return &domain.Progress{
		ProjectID: projectID,
		SessionID: sessionID,
		Hotspots:  entries,
		Stats:     Stats(entries),
	}, nil
}

// ResetProgress deletes the session's progress on the project and returns
// the number of removed rows.
func (t *Tracker) ResetProgress(ctx context.Context, sessionID, projectID string) (int64, error) {
	n, err := t.store.DeleteProgress(ctx, sessionID, projectID)
	if err != nil {
		return 0, fmt.Errorf("delete progress: %w", err)
	}
	return n, nil
}

// Stats summarises entries; the percentage is 0 for an empty project.
func Stats(entries []domain.ProgressEntry) domain.ProgressStats {
	s := domain.ProgressStats{Total: len(entries)}
	for _, e := range entries {
		if e.Unlocked {
			s.Unlocked++
		}
	}
	if s.Total > 0 {
		s.Percentage = int(math.Round(100 * float64(s.Unlocked) / float64(s.Total)))
	}
	return s
}
