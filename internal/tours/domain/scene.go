package domain

// SceneDescriptor is what the panorama viewer needs to render one scene.
type SceneDescriptor struct {
	ID              string           `json:"id"`
	PanoramaSource  string           `json:"panoramaSource"`
	NavigablePoints []NavigablePoint `json:"navigablePoints"`
	Markers         []Marker         `json:"markers"`
}

// NavigablePoint links the current scene to another one.
type NavigablePoint struct {
	ID            string  `json:"id"`
	Pitch         float64 `json:"pitch"`
	Yaw           float64 `json:"yaw"`
	Label         string  `json:"label"`
	LinkedSceneID string  `json:"linkedSceneId"`
	StyleClass    string  `json:"styleClass"`
}

// Marker is a terminal hotspot rendered without a scene link.
type Marker struct {
	ID          string  `json:"id"`
	Pitch       float64 `json:"pitch"`
	Yaw         float64 `json:"yaw"`
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	StyleClass  string  `json:"styleClass"`
}
