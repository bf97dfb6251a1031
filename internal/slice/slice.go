// Package slice implements Component F (§4.4): resolving a set of
// target function names to vertex ids, computing their dependency
// closure, and breaking any cycle left in that closure per the fixed
// kind-pair policy before the emitter (internal/emit) ever sees it.
package slice

import (
	"fmt"
	"sort"

	"github.com/modslice/modslice/internal/entity"
	"github.com/modslice/modslice/internal/graph"
)

// ErrUnknownTarget is returned by ResolveTargets when a requested name
// is not a known module function (§4.4 step 1: "fail-fast if a name is
// not in the module function index").
type ErrUnknownTarget struct {
	Name string
}

func (e *ErrUnknownTarget) Error() string {
	return fmt.Sprintf("slice: no module function named %q", e.Name)
}

// CycleError is returned when the induced subgraph still contains a
// cycle no kind-pair policy can break (§4.4 step 4, "any other
// mixed-kind cycle: treat as a bug").
type CycleError struct {
	Members []entity.ID
	Kinds   []entity.Kind
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("slice: unresolvable cycle among vertices %v (kinds %v)", e.Members, e.Kinds)
}

// ResolveTargets maps target function names to vertex ids, searching
// only module-area Function entities.
func ResolveTargets(entities []*entity.Entity, names []string) ([]entity.ID, error) {
	byName := make(map[string]entity.ID)
	for _, e := range entities {
		if e.Area == entity.Module && e.Kind == entity.Function {
			byName[e.Name] = e.ID
		}
	}

	ids := make([]entity.ID, 0, len(names))
	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			return nil, &ErrUnknownTarget{Name: name}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Slice computes the target closure and returns the cycle-resolved
// subgraph plus its vertex set, ready for internal/emit. g and
// registry are the full graph and entity set built by internal/graph;
// targets are the vertex ids ResolveTargets returned.
func Slice(g *graph.Graph, registry *entity.Registry, targets []entity.ID) (*graph.Graph, []entity.ID, error) {
	members := make(map[entity.ID]struct{}, len(targets))
	for _, t := range targets {
		members[t] = struct{}{}
	}
	for _, t := range targets {
		for _, dep := range g.ReverseTransitiveClosure(t) {
			members[dep] = struct{}{}
		}
	}

	vertices := make([]entity.ID, 0, len(members))
	for id := range members {
		vertices = append(vertices, id)
	}
	sort.Slice(vertices, func(i, j int) bool { return vertices[i] < vertices[j] })

	sub := g.Subgraph(vertices)

	targetSet := make(map[entity.ID]struct{}, len(targets))
	for _, t := range targets {
		targetSet[t] = struct{}{}
	}

	if err := breakCycles(sub, registry, targetSet); err != nil {
		return nil, nil, err
	}

	return sub, vertices, nil
}
