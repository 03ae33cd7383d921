// Package scenegraph turns a project's flat hotspot list into the scenes a
// panorama viewer renders, and keeps an editing cursor consistent with them.
//
// The root scene shows the root-level navigational hotspots. Every hotspot
// with a target image gets a scene "scene_<id>" listing its direct
// navigational children plus one back point to the parent scene (or root).
// Hotspots without a target image are markers: they are listed on the scene
// that contains them but never become scenes.
package scenegraph

import (
	"strings"

	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

const (
	RootSceneID = "root"

	BackLabel      = "Back"
	BackStyleClass = "hotspot-back"
	backPitch      = -10
	backYaw        = 180
)

// SceneID derives the scene id of a navigational hotspot.
func SceneID(hotspotID string) string {
	return "scene_" + hotspotID
}

// BuildScenes builds the root scene and one scene per navigational hotspot.
// Inactive hotspots are ignored and a parent reference that does not resolve
// to an active hotspot attaches the hotspot to the root scene. The only
// failure is a cyclic parent chain, reported as *domain.CycleDetectedError.
func BuildScenes(rootImage string, hotspots []domain.Hotspot) (map[string]domain.SceneDescriptor, error) {
	a := newArena(hotspots)
	if err := a.checkAcyclic(); err != nil {
		return nil, err
	}
	return a.build(rootImage)
}

func (a *arena) build(rootImage string) (map[string]domain.SceneDescriptor, error) {
	scenes := make(map[string]domain.SceneDescriptor, len(a.nodes)+1)
	scenes[RootSceneID] = domain.SceneDescriptor{
		ID:              RootSceneID,
		PanoramaSource:  rootImage,
		NavigablePoints: []domain.NavigablePoint{},
		Markers:         []domain.Marker{},
	}

	owner := make([]string, len(a.nodes))
	for i, h := range a.nodes {
		p, err := a.sceneParent(i)
		if err != nil {
			return nil, err
		}
		owner[i] = RootSceneID
		if p != noParent {
			owner[i] = SceneID(a.nodes[p].ID)
		}

		if h.Kind() != domain.KindNavigational {
			continue
		}
		scenes[SceneID(h.ID)] = domain.SceneDescriptor{
			ID:              SceneID(h.ID),
			PanoramaSource:  h.Target(),
			NavigablePoints: []domain.NavigablePoint{backPoint(h.ID, owner[i])},
			Markers:         []domain.Marker{},
		}
	}

	for i, h := range a.nodes {
		scene := scenes[owner[i]]
		switch h.Kind() {
		case domain.KindNavigational:
			scene.NavigablePoints = append(scene.NavigablePoints, domain.NavigablePoint{
				ID:            h.ID,
				Pitch:         h.Pitch,
				Yaw:           h.Yaw,
				Label:         h.Name,
				LinkedSceneID: SceneID(h.ID),
				StyleClass:    StyleClass(h.HotspotType, h.IconType),
			})
		default:
			scene.Markers = append(scene.Markers, domain.Marker{
				ID:          h.ID,
				Pitch:       h.Pitch,
				Yaw:         h.Yaw,
				Label:       h.Name,
				Description: h.Description,
				StyleClass:  StyleClass(h.HotspotType, h.IconType),
			})
		}
		scenes[owner[i]] = scene
	}

	return scenes, nil
}

func backPoint(hotspotID, parentScene string) domain.NavigablePoint {
	return domain.NavigablePoint{
		ID:            "back_" + SceneID(hotspotID),
		Pitch:         backPitch,
		Yaw:           backYaw,
		Label:         BackLabel,
		LinkedSceneID: parentScene,
		StyleClass:    BackStyleClass,
	}
}

// StyleClass maps a hotspot type and icon to the viewer css class. Doors
// get the door class; every other type shares the nav class.
func StyleClass(t domain.HotspotType, icon string) string {
	variant := "1"
	if strings.HasSuffix(icon, "_2") {
		variant = "2"
	}
	if t == domain.HotspotDoor {
		return "hotspot-door door-" + variant
	}
	return "hotspot-nav normal-" + variant
}

// CheckParent reports whether parentID can become the parent of childID
// within hotspots. It returns domain.ErrNotFound when the parent is not an
// active hotspot of the collection and *domain.CycleDetectedError when the
// new edge would close a loop.
func CheckParent(hotspots []domain.Hotspot, childID, parentID string) error {
	if parentID == "" {
		return nil
	}
	a := newArena(hotspots)
	p, ok := a.lookup(parentID)
	if !ok {
		return domain.ErrNotFound
	}
	if parentID == childID {
		return &domain.CycleDetectedError{StartID: childID, Steps: 1}
	}
	chain, err := a.ancestors(p)
	if err != nil {
		return err
	}
	for _, anc := range chain {
		if a.nodes[anc].ID == childID {
			return &domain.CycleDetectedError{StartID: childID, Steps: len(chain)}
		}
	}
	return nil
}
