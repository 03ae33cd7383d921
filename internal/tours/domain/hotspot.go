package domain

import (
	"strings"
	"time"

	"github.com/ambi360/ambi360-backend/internal/validation"
)

type HotspotType string

const (
	HotspotNormal HotspotType = "normal"
	HotspotDoor   HotspotType = "door"
	HotspotInfo   HotspotType = "info"
	HotspotCustom HotspotType = "custom"
)

const DefaultIconType = "normal_1"

// Kind tells navigational hotspots, which open their own scene, apart from
// terminal markers.
type Kind int

const (
	KindMarker Kind = iota
	KindNavigational
)

func (k Kind) String() string {
	if k == KindNavigational {
		return "navigational"
	}
	return "marker"
}

// Hotspot is an authored point inside a panorama. Field names follow the
// storage columns.
type Hotspot struct {
	ID               string      `json:"id"`
	ProjectID        string      `json:"project_id,omitempty"`
	ParentHotspotID  *string     `json:"parent_hotspot_id"`
	Name             string      `json:"name" validate:"required,max=100"`
	Description      string      `json:"description" validate:"max=500"`
	Pitch            float64     `json:"pitch" validate:"gte=-90,lte=90"`
	Yaw              float64     `json:"yaw" validate:"gte=0,lt=360"`
	HotspotType      HotspotType `json:"hotspot_type" validate:"oneof=normal door info custom"`
	IconType         string      `json:"icon_type" validate:"max=50"`
	TargetImageURL   *string     `json:"target_image_url"`
	UnlockOrder      int         `json:"unlock_order" validate:"gte=0"`
	RequiresPrevious bool        `json:"requires_previous"`
	IsActive         bool        `json:"is_active"`
	CreatedAt        time.Time   `json:"created_at,omitempty"`
	UpdatedAt        time.Time   `json:"updated_at,omitempty"`
}

// Kind reports whether the hotspot links to a scene of its own.
func (h Hotspot) Kind() Kind {
	if h.Target() != "" {
		return KindNavigational
	}
	return KindMarker
}

// ParentID returns the parent id or "" for root-level hotspots.
func (h Hotspot) ParentID() string {
	if h.ParentHotspotID == nil {
		return ""
	}
	return strings.TrimSpace(*h.ParentHotspotID)
}

// Target returns the target panorama or "" for markers.
func (h Hotspot) Target() string {
	if h.TargetImageURL == nil {
		return ""
	}
	return strings.TrimSpace(*h.TargetImageURL)
}

// ApplyDefaults fills the optional fields the way a fresh row is stored.
func (h *Hotspot) ApplyDefaults() {
	if h.HotspotType == "" {
		h.HotspotType = HotspotNormal
	}
	if h.IconType == "" {
		h.IconType = DefaultIconType
	}
	if h.ParentHotspotID != nil && strings.TrimSpace(*h.ParentHotspotID) == "" {
		h.ParentHotspotID = nil
	}
	if h.TargetImageURL != nil && strings.TrimSpace(*h.TargetImageURL) == "" {
		h.TargetImageURL = nil
	}
}

// Validate checks field ranges. The returned error matches ErrValidation.
func (h Hotspot) Validate() error {
	if verr := validation.ValidateStruct(&h); verr != nil {
		return &ValidationError{Message: verr.Error()}
	}
	return nil
}

// HotspotUpdate carries a partial update; nil fields are left untouched.
type HotspotUpdate struct {
	ParentHotspotID  *string      `json:"parent_hotspot_id"`
	Name             *string      `json:"name" validate:"omitempty,min=1,max=100"`
	Description      *string      `json:"description" validate:"omitempty,max=500"`
	Pitch            *float64     `json:"pitch" validate:"omitempty,gte=-90,lte=90"`
	Yaw              *float64     `json:"yaw" validate:"omitempty,gte=0,lt=360"`
	HotspotType      *HotspotType `json:"hotspot_type" validate:"omitempty,oneof=normal door info custom"`
	IconType         *string      `json:"icon_type" validate:"omitempty,max=50"`
	TargetImageURL   *string      `json:"target_image_url"`
	UnlockOrder      *int         `json:"unlock_order" validate:"omitempty,gte=0"`
	RequiresPrevious *bool        `json:"requires_previous"`
}

func (u HotspotUpdate) Empty() bool {
	return u.ParentHotspotID == nil && u.Name == nil && u.Description == nil &&
		u.Pitch == nil && u.Yaw == nil && u.HotspotType == nil && u.IconType == nil &&
		u.TargetImageURL == nil && u.UnlockOrder == nil && u.RequiresPrevious == nil
}

func (u HotspotUpdate) Validate() error {
	if verr := validation.ValidateStruct(&u); verr != nil {
		return &ValidationError{Message: verr.Error()}
	}
	return nil
}

// Apply returns a copy of h with the update merged in.
func (u HotspotUpdate) Apply(h Hotspot) Hotspot {
	if u.ParentHotspotID != nil {
		h.ParentHotspotID = u.ParentHotspotID
	}
	if u.Name != nil {
		h.Name = *u.Name
	}
	if u.Description != nil {
		h.Description = *u.Description
	}
	if u.Pitch != nil {
		h.Pitch = *u.Pitch
	}
	if u.Yaw != nil {
		h.Yaw = *u.Yaw
	}
	if u.HotspotType != nil {
		h.HotspotType = *u.HotspotType
	}
	if u.IconType != nil {
		h.IconType = *u.IconType
	}
	if u.TargetImageURL != nil {
		h.TargetImageURL = u.TargetImageURL
	}
	if u.UnlockOrder != nil {
		h.UnlockOrder = *u.UnlockOrder
	}
	if u.RequiresPrevious != nil {
		h.RequiresPrevious = *u.RequiresPrevious
	}
	h.ApplyDefaults()
	return h
}

// StringPtr returns nil for blank strings.
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
