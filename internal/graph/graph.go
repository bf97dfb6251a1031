// Package graph holds the dependency graph discovered by applying the
// fixed meta-graph schema (internal/metagraph) to a set of parsed
// entities (internal/entity), plus the traversal, cycle-detection and
// ordering operations the slicer and emitter drive it with.
//
// An edge s -> t means "s must precede t": s is a dependency, t is a
// dependent (§4.3). Edges[node] holds node's dependents; ReverseEdges[node]
// holds node's dependencies.
package graph

import (
	"github.com/modslice/modslice/internal/entity"
	"github.com/modslice/modslice/internal/metagraph"
)

// Graph is an in-memory dependency graph over entity IDs.
type Graph struct {
	// Edges: node -> list of nodes that depend on node.
	Edges map[entity.ID][]entity.ID
	// ReverseEdges: node -> list of nodes node depends on.
	ReverseEdges map[entity.ID][]entity.ID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		Edges:        make(map[entity.ID][]entity.ID),
		ReverseEdges: make(map[entity.ID][]entity.ID),
	}
}

// ensure registers id as a vertex even if it never gains an edge, so an
// isolated entity (e.g. a target with no dependencies) still appears in
// Nodes()/NodeCount().
func (g *Graph) ensure(id entity.ID) {
	if _, ok := g.Edges[id]; !ok {
		g.Edges[id] = []entity.ID{}
	}
	if _, ok := g.ReverseEdges[id]; !ok {
		g.ReverseEdges[id] = []entity.ID{}
	}
}

// AddEdge records an edge from -> to ("from must precede to").
func (g *Graph) AddEdge(from, to entity.ID) {
	g.ensure(from)
	g.ensure(to)
	g.Edges[from] = append(g.Edges[from], to)
	g.ReverseEdges[to] = append(g.ReverseEdges[to], from)
}

// BuildFromEntities applies the meta-graph to entities, discovering an
// edge s -> t whenever s defines an identifier appearing among t's tag
// tokens and the meta-graph permits a (s.Area, s.Kind) entity to feed a
// (t.Area, t.Kind) entity (§4.3 algorithm). Every entity becomes a
// vertex, even one with no discovered edges.
func BuildFromEntities(entities []*entity.Entity) *Graph {
	g := New()
	for _, e := range entities {
		g.ensure(e.ID)
	}

	// index maps a defined identifier to every entity that defines it,
	// so each dependent only scans its own tag tokens rather than every
	// other entity (O(|tags|) per vertex instead of O(|entities|^2)).
	index := make(map[string][]*entity.Entity)
	for _, e := range entities {
		for id := range e.IDs {
			index[id] = append(index[id], e)
		}
	}

	type pair struct{ from, to entity.ID }
	seen := make(map[pair]struct{})

	for _, t := range entities {
		for tok := range t.TagTokens {
			for _, s := range index[tok] {
				if s.ID == t.ID {
					continue
				}
				if !metagraph.Allows(s.Area, s.Kind, t.Area, t.Kind) {
					continue
				}
				p := pair{s.ID, t.ID}
				if _, dup := seen[p]; dup {
					continue
				}
				seen[p] = struct{}{}
				g.AddEdge(s.ID, t.ID)
			}
		}
	}

	return g
}

// NodeCount returns the number of vertices in the graph.
func (g *Graph) NodeCount() int {
	return len(g.Edges)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, targets := range g.Edges {
		count += len(targets)
	}
	return count
}

// Nodes returns all vertex ids, in no particular order.
func (g *Graph) Nodes() []entity.ID {
	nodes := make([]entity.ID, 0, len(g.Edges))
	for node := range g.Edges {
		nodes = append(nodes, node)
	}
	return nodes
}

// OutDegree returns the number of entities that depend on node.
func (g *Graph) OutDegree(node entity.ID) int {
	return len(g.Edges[node])
}

// InDegree returns the number of entities node depends on.
func (g *Graph) InDegree(node entity.ID) int {
	return len(g.ReverseEdges[node])
}

// Successors returns the entities that depend on node.
func (g *Graph) Successors(node entity.ID) []entity.ID {
	return g.Edges[node]
}

// Predecessors returns the entities node depends on.
func (g *Graph) Predecessors(node entity.ID) []entity.ID {
	return g.ReverseEdges[node]
}

// Subgraph returns a new graph containing only the given vertices and
// the edges of g running between two of them.
func (g *Graph) Subgraph(ids []entity.ID) *Graph {
	nodeSet := make(map[entity.ID]struct{}, len(ids))
	for _, id := range ids {
		nodeSet[id] = struct{}{}
	}

	sub := New()
	for _, id := range ids {
		sub.ensure(id)
		for _, target := range g.Edges[id] {
			if _, ok := nodeSet[target]; ok {
				sub.Edges[id] = append(sub.Edges[id], target)
			}
		}
		for _, source := range g.ReverseEdges[id] {
			if _, ok := nodeSet[source]; ok {
				sub.ReverseEdges[id] = append(sub.ReverseEdges[id], source)
			}
		}
	}

	return sub
}
