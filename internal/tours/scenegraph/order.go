package scenegraph

import (
	"sort"

	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

// ParentsFirst returns the active hotspots ordered so that every parent comes
// before its children, keeping input order among hotspots of equal depth.
// Parent references that do not resolve within the set are cleared.
func ParentsFirst(hotspots []domain.Hotspot) ([]domain.Hotspot, error) {
	a := newArena(hotspots)
	if err := a.checkAcyclic(); err != nil {
		return nil, err
	}

	depth := make([]int, len(a.nodes))
	for i := range a.nodes {
		chain, err := a.ancestors(i)
		if err != nil {
			return nil, err
		}
		depth[i] = len(chain)
	}

	order := make([]int, len(a.nodes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool { return depth[order[x]] < depth[order[y]] })

	out := make([]domain.Hotspot, 0, len(order))
	for _, i := range order {
		h := a.nodes[i]
		if a.parent[i] == noParent {
			h.ParentHotspotID = nil
		}
		out = append(out, h)
	}
	return out, nil
}
