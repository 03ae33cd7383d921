package domain

import "time"

// UnlockResult is the outcome of an unlock request. Re-unlocking an already
// unlocked hotspot is reported as UnlockSuccess.
type UnlockResult string

const (
	UnlockSuccess   UnlockResult = "success"
	UnlockForbidden UnlockResult = "forbidden"
)

// UserProgress is one unlocked hotspot of a session.
type UserProgress struct {
	UserSession string    `json:"user_session"`
	ProjectID   string    `json:"project_id"`
	HotspotID   string    `json:"hotspot_id"`
	UnlockedAt  time.Time `json:"unlocked_at"`
}

// ProgressEntry is an active hotspot annotated with the session's unlock state.
type ProgressEntry struct {
	HotspotID        string      `json:"id"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	HotspotType      HotspotType `json:"hotspot_type"`
	UnlockOrder      int         `json:"unlock_order"`
	RequiresPrevious bool        `json:"requires_previous"`
	Unlocked         bool        `json:"is_unlocked"`
	UnlockedAt       *time.Time  `json:"unlocked_at"`
}

type ProgressStats struct {
	Total      int `json:"total"`
	Unlocked   int `json:"unlocked"`
	Percentage int `json:"percentage"`
}

// Progress is a session's view of one project.
type Progress struct {
	ProjectID string          `json:"project_id"`
	SessionID string          `json:"session_id"`
	Hotspots  []ProgressEntry `json:"hotspots"`
	Stats     ProgressStats   `json:"stats"`
}

// UnlockEvent is published after a hotspot is unlocked for the first time.
type UnlockEvent struct {
	ProjectID  string    `json:"project_id"`
	HotspotID  string    `json:"hotspot_id"`
	SessionID  string    `json:"session_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
