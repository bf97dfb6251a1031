package slice

import (
	"strings"

	"github.com/modslice/modslice/internal/entity"
	"github.com/modslice/modslice/internal/graph"
)

// breakCycles repeatedly finds a strongly connected component in g
// and breaks it per the §4.4 kind-pair policy, mutating g in place,
// until no cycle remains. targets identifies the slice's original
// target vertices, preferred as the vertex that keeps its edges (and
// receives any attached forward declaration) when a choice is needed,
// since it is the vertex the caller actually asked to compile.
func breakCycles(g *graph.Graph, registry *entity.Registry, targets map[entity.ID]struct{}) error {
	for {
		broke := false
		var stuck []entity.ID

		for _, comp := range g.SCCs() {
			if len(comp) == 1 {
				id := comp[0]
				if g.HasSelfEdge(id) {
					removeEdge(g, id, id)
					broke = true
				}
				continue
			}

			removed, err := breakComponent(g, registry, targets, comp)
			if err != nil {
				return err
			}
			if removed {
				broke = true
				continue
			}
			stuck = comp
		}

		if !broke {
			if stuck != nil {
				kinds := make([]entity.Kind, len(stuck))
				for i, id := range stuck {
					kinds[i] = registry.Get(id).Kind
				}
				return &CycleError{Members: append([]entity.ID(nil), stuck...), Kinds: kinds}
			}
			return nil
		}
	}
}

// breakComponent removes at least one edge from comp (or attaches a
// forward declaration and removes one edge, for the Function/Function
// policy), enough to guarantee the next SCCs() pass shrinks or
// eliminates this component. The reported bool is false only if comp's
// policy found nothing to remove, which breakCycles treats as a round
// making no progress rather than as success.
func breakComponent(g *graph.Graph, registry *entity.Registry, targets map[entity.ID]struct{}, comp []entity.ID) (bool, error) {
	kindOf := func(id entity.ID) entity.Kind { return registry.Get(id).Kind }

	allKind := func(k entity.Kind) bool {
		for _, id := range comp {
			if kindOf(id) != k {
				return false
			}
		}
		return true
	}

	switch {
	case allKind(entity.Function):
		return breakFunctionCycle(g, registry, targets, comp), nil

	case allKind(entity.Struct), allKind(entity.Macro), allKind(entity.Typedef),
		allKind(entity.Enum), allKind(entity.Global), allKind(entity.Declaration):
		return breakSameKindCycle(g, comp), nil

	case len(comp) == 2 && isTypedefStructPair(kindOf(comp[0]), kindOf(comp[1])):
		return breakTypedefStructCycle(g, registry, comp), nil

	default:
		kinds := make([]entity.Kind, len(comp))
		for i, id := range comp {
			kinds[i] = kindOf(id)
		}
		return false, &CycleError{Members: append([]entity.ID(nil), comp...), Kinds: kinds}
	}
}

func isTypedefStructPair(a, b entity.Kind) bool {
	return (a == entity.Typedef && b == entity.Struct) || (a == entity.Struct && b == entity.Typedef)
}

// breakFunctionCycle implements "Two Functions A→B→…→A: introduce a
// forward declaration for the first function ... attach it as an
// extra_forward_declaration attribute on A's vertex, and delete the
// edge A→B" (§4.4). Within this component, the kept vertex (the one
// whose incoming edges are deleted and which receives the forward
// declarations) is a slice target if one is present (otherwise the
// lowest id, for determinism); every other member with
// an edge into the kept vertex has that edge deleted and its
// prototype attached to the kept vertex's ForwardDeclaration.
func breakFunctionCycle(g *graph.Graph, registry *entity.Registry, targets map[entity.ID]struct{}, comp []entity.ID) bool {
	keep := chooseKeeper(comp, targets)

	removed := false
	for _, other := range comp {
		if other == keep {
			continue
		}
		if hasEdge(g, other, keep) {
			removeEdge(g, other, keep)
			attachForwardDeclaration(registry, keep, other)
			removed = true
		}
	}
	return removed
}

// breakSameKindCycle implements "same-kind self-cycle: delete the
// edge; both will still be emitted" (§4.4), generalized from the
// three kinds spec.md names explicitly (Struct, Macro, Typedef) to
// any same-kind component — deleting one edge between two
// already-fully-emitted same-kind vertices is equally safe for Enum,
// Global and Declaration, none of which spec.md's worked examples
// happen to exercise.
//
// Every pair of members is checked, not just sorted-adjacent ones: a
// same-kind strongly connected component of five or more vertices can
// have two edge-disjoint Hamiltonian cycles, so a real edge can exist
// between two members with no sorted-adjacent pair between them.
// Checking all pairs is still guaranteed to find an edge, since the
// component is strongly connected and therefore has at least one edge
// among its members.
func breakSameKindCycle(g *graph.Graph, comp []entity.ID) bool {
	sorted := append([]entity.ID(nil), comp...)
	sortIDs(sorted)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			if hasEdge(g, b, a) {
				removeEdge(g, b, a)
				return true
			}
			if hasEdge(g, a, b) {
				removeEdge(g, a, b)
				return true
			}
		}
	}
	return false
}

// breakTypedefStructCycle implements "Typedef ↔ Struct: delete the
// edge running into the typedef (so the struct is emitted first; its
// typedef naturally follows)" (§4.4): the edge that must go is the one
// that would otherwise force the typedef ahead of the struct, i.e. the
// struct's own edge *into* the typedef from the far side of this
// pair — the typedef-precedes-struct edge. Keeping struct-precedes-
// typedef is what makes "struct first, typedef second" hold.
func breakTypedefStructCycle(g *graph.Graph, registry *entity.Registry, comp []entity.ID) bool {
	var td, st entity.ID
	for _, id := range comp {
		if registry.Get(id).Kind == entity.Typedef {
			td = id
		} else {
			st = id
		}
	}
	if hasEdge(g, td, st) {
		removeEdge(g, td, st)
		return true
	}
	return false
}

func chooseKeeper(comp []entity.ID, targets map[entity.ID]struct{}) entity.ID {
	for _, id := range comp {
		if _, ok := targets[id]; ok {
			return id
		}
	}
	sorted := append([]entity.ID(nil), comp...)
	sortIDs(sorted)
	return sorted[0]
}

func sortIDs(ids []entity.ID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

func hasEdge(g *graph.Graph, from, to entity.ID) bool {
	for _, t := range g.Successors(from) {
		if t == to {
			return true
		}
	}
	return false
}

func removeEdge(g *graph.Graph, from, to entity.ID) {
	g.Edges[from] = removeID(g.Edges[from], to)
	g.ReverseEdges[to] = removeID(g.ReverseEdges[to], from)
}

func removeID(ids []entity.ID, target entity.ID) []entity.ID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// attachForwardDeclaration extracts a prototype ("RET NAME(ARGS);")
// from donor's code and appends it to target's ForwardDeclaration (one
// prototype per line), so the emitter writes it immediately before
// target's own code (§4.4).
func attachForwardDeclaration(registry *entity.Registry, target, donor entity.ID) {
	donorEntity := registry.Get(donor)
	proto := extractPrototype(donorEntity.Code)
	if proto == "" {
		return
	}
	targetEntity := registry.Get(target)
	if targetEntity.ForwardDeclaration != "" {
		// already has one from a previous break in this component
		targetEntity.ForwardDeclaration += "\n" + proto
		return
	}
	targetEntity.ForwardDeclaration = proto
}

// extractPrototype returns the signature text of a function
// definition's code, up to (not including) its opening brace, with a
// trailing semicolon — "extracted from its code before the opening
// brace" (§4.4).
func extractPrototype(code string) string {
	idx := strings.IndexByte(code, '{')
	if idx == -1 {
		return ""
	}
	sig := strings.TrimSpace(code[:idx])
	if sig == "" {
		return ""
	}
	return sig + ";"
}
