package scenegraph

import (
	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

const noParent = -1

// arena is a flat table of hotspots keyed by id with resolved parent indexes.
// Inactive entries and repeated ids are skipped; the first occurrence wins.
type arena struct {
	nodes  []domain.Hotspot
	index  map[string]int
	parent []int
}

func newArena(hotspots []domain.Hotspot) *arena {
	a := &arena{
		nodes: make([]domain.Hotspot, 0, len(hotspots)),
		index: make(map[string]int, len(hotspots)),
	}
	for _, h := range hotspots {
		if !h.IsActive || h.ID == "" {
			continue
		}
		if _, dup := a.index[h.ID]; dup {
			continue
		}
		a.index[h.ID] = len(a.nodes)
		a.nodes = append(a.nodes, h)
	}

	// A parent reference that does not resolve promotes the hotspot to root.
	a.parent = make([]int, len(a.nodes))
	for i, h := range a.nodes {
		a.parent[i] = noParent
		if pid := h.ParentID(); pid != "" {
			if j, ok := a.index[pid]; ok {
				a.parent[i] = j
			}
		}
	}
	return a
}

func (a *arena) lookup(id string) (int, bool) {
	i, ok := a.index[id]
	return i, ok
}

// checkAcyclic walks every parent chain once. A chain longer than the number
// of nodes can only be a cycle.
func (a *arena) checkAcyclic() error {
	verified := make([]bool, len(a.nodes))
	limit := len(a.nodes)

	for start := range a.nodes {
		if verified[start] {
			continue
		}
		path := make([]int, 0, 8)
		steps := 0
		for cur := start; cur != noParent && !verified[cur]; cur = a.parent[cur] {
			if steps > limit {
				return &domain.CycleDetectedError{StartID: a.nodes[start].ID, Steps: steps}
			}
			path = append(path, cur)
			steps++
		}
		for _, i := range path {
			verified[i] = true
		}
	}
	return nil
}

// ancestors returns the parent chain of i, nearest first, bounded by the
// arena size.
func (a *arena) ancestors(i int) ([]int, error) {
	var out []int
	steps := 0
	for cur := a.parent[i]; cur != noParent; cur = a.parent[cur] {
		steps++
		if steps > len(a.nodes) {
			return nil, &domain.CycleDetectedError{StartID: a.nodes[i].ID, Steps: steps}
		}
		out = append(out, cur)
	}
	return out, nil
}

// sceneParent returns the nearest navigational ancestor of i, or noParent
// when the hotspot belongs to the root scene. Normally this is the direct
// parent; a marker parent hoists the hotspot to the next scene up.
func (a *arena) sceneParent(i int) (int, error) {
	chain, err := a.ancestors(i)
	if err != nil {
		return noParent, err
	}
	for _, p := range chain {
		if a.nodes[p].Kind() == domain.KindNavigational {
			return p, nil
		}
	}
	return noParent, nil
}

// subtree returns i and every descendant of i in input order.
func (a *arena) subtree(i int) []int {
	children := make(map[int][]int, len(a.nodes))
	for c, p := range a.parent {
		if p != noParent {
			children[p] = append(children[p], c)
		}
	}

	seen := make([]bool, len(a.nodes))
	queue := []int{i}
	seen[i] = true
	for n := 0; n < len(queue); n++ {
		for _, c := range children[queue[n]] {
			if !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}

	out := make([]int, 0, len(queue))
	for idx := range a.nodes {
		if seen[idx] {
			out = append(out, idx)
		}
	}
	return out
}
