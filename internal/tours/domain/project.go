package domain

import (
	"fmt"
	"time"

	"github.com/ambi360/ambi360-backend/internal/validation"
)

const minPasswordLen = 4

// Project owns a tour: a main panorama plus its hotspots.
type Project struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	MainImageURL  string    `json:"main_image_url"`
	LogoURL       *string   `json:"logo_url"`
	IsPublic      bool      `json:"is_public"`
	UnlockOrder   int       `json:"unlock_order"`
	HasPassword   bool      `json:"has_password"`
	CreatedBy     *string   `json:"created_by,omitempty"`
	IsActive      bool      `json:"is_active"`
	TotalHotspots int       `json:"total_hotspots"`
	DoorHotspots  int       `json:"door_hotspots"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewProject is the input for project creation.
type NewProject struct {
	Name         string  `json:"name" validate:"required,min=1,max=100,projectname"`
	Title        string  `json:"title" validate:"required,min=1,max=200"`
	Description  string  `json:"description" validate:"max=2000"`
	MainImageURL string  `json:"main_image_url" validate:"required,url"`
	LogoURL      *string `json:"logo_url" validate:"omitempty,url"`
	IsPublic     *bool   `json:"is_public"`
	UnlockOrder  int     `json:"unlock_order" validate:"gte=0"`
	Password     string  `json:"password" validate:"omitempty,min=4,max=72"`
	CreatedBy    *string `json:"-"`
}

func (p NewProject) Validate() error {
	if verr := validation.ValidateStruct(&p); verr != nil {
		return &ValidationError{Message: verr.Error()}
	}
	return nil
}

// ProjectUpdate carries a partial update. PasswordHash is filled by the
// service from Password and never bound from requests.
type ProjectUpdate struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100,projectname"`
	Title        *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	MainImageURL *string `json:"main_image_url" validate:"omitempty,url"`
	LogoURL      *string `json:"logo_url" validate:"omitempty,url"`
	IsPublic     *bool   `json:"is_public"`
	UnlockOrder  *int    `json:"unlock_order" validate:"omitempty,gte=0"`
	Password     *string `json:"password" validate:"omitempty,max=72"`
	PasswordHash *string `json:"-"`
}

func (u ProjectUpdate) Empty() bool {
	return u.Name == nil && u.Title == nil && u.Description == nil && u.MainImageURL == nil &&
		u.LogoURL == nil && u.IsPublic == nil && u.UnlockOrder == nil && u.Password == nil
}

// Validate checks the set fields. An empty password is allowed and
// removes the gate.
func (u ProjectUpdate) Validate() error {
	if verr := validation.ValidateStruct(&u); verr != nil {
		return &ValidationError{Message: verr.Error()}
	}
	if u.Password != nil && *u.Password != "" && len(*u.Password) < minPasswordLen {
		return NewValidationError("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	return nil
}

// AccessLog records one visit to a project.
type AccessLog struct {
	ID          int64     `json:"id"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name,omitempty"`
	UserSession string    `json:"user_session"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	AccessedAt  time.Time `json:"accessed_at"`
}
