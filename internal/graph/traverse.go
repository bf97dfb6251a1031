package graph

import (
	"errors"
	"sort"

	"github.com/modslice/modslice/internal/entity"
)

// ErrCyclic is returned by TopologicalSort when the graph still
// contains a cycle after whatever cycle-breaking the caller has already
// applied.
var ErrCyclic = errors.New("graph: cycle present, no topological order exists")

func (g *Graph) neighbors(direction string) map[entity.ID][]entity.ID {
	if direction == "reverse" {
		return g.ReverseEdges
	}
	return g.Edges
}

// BFS performs a breadth-first search from start. direction "forward"
// follows Edges (dependents); "reverse" follows ReverseEdges
// (dependencies).
func (g *Graph) BFS(start entity.ID, direction string) []entity.ID {
	adj := g.neighbors(direction)

	visited := map[entity.ID]struct{}{start: {}}
	result := []entity.ID{}
	queue := []entity.ID{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		for _, neighbor := range adj[current] {
			if _, seen := visited[neighbor]; !seen {
				visited[neighbor] = struct{}{}
				queue = append(queue, neighbor)
			}
		}
	}

	return result
}

// TransitiveClosure returns every entity that transitively depends on
// start (excluding start itself): start's dependents.
func (g *Graph) TransitiveClosure(start entity.ID) []entity.ID {
	all := g.BFS(start, "forward")
	return excludeStart(all, start)
}

// ReverseTransitiveClosure returns every entity start transitively
// depends on (excluding start itself) — the set the slicer pulls in for
// a compilation target.
func (g *Graph) ReverseTransitiveClosure(start entity.ID) []entity.ID {
	all := g.BFS(start, "reverse")
	return excludeStart(all, start)
}

func excludeStart(all []entity.ID, start entity.ID) []entity.ID {
	if len(all) > 0 && all[0] == start {
		return all[1:]
	}
	return all
}

// ShortestPath finds the shortest path from start to end via BFS, or
// nil if no path exists.
func (g *Graph) ShortestPath(start, end entity.ID, direction string) []entity.ID {
	if start == end {
		return []entity.ID{start}
	}

	adj := g.neighbors(direction)

	visited := map[entity.ID]struct{}{start: {}}
	parent := map[entity.ID]entity.ID{}
	queue := []entity.ID{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range adj[current] {
			if _, seen := visited[neighbor]; seen {
				continue
			}
			visited[neighbor] = struct{}{}
			parent[neighbor] = current

			if neighbor == end {
				path := []entity.ID{end}
				for node := end; node != start; {
					node = parent[node]
					path = append([]entity.ID{node}, path...)
				}
				return path
			}

			queue = append(queue, neighbor)
		}
	}

	return nil
}

// SCCs returns the graph's strongly connected components via Tarjan's
// algorithm, in no particular order. A component of size 1 is a cycle
// only if its single vertex has a self-edge; larger components are
// always cycles. This generalizes a single-cycle DFS search into a
// complete decomposition, which is what the slicer's per-component
// cycle-breaking policy (function/function, same-kind self-cycle,
// typedef/struct, fatal-otherwise) needs to see every cycle at once
// rather than one counterexample at a time.
func (g *Graph) SCCs() [][]entity.ID {
	index := 0
	indices := map[entity.ID]int{}
	lowlink := map[entity.ID]int{}
	onStack := map[entity.ID]bool{}
	var stack []entity.ID
	var components [][]entity.ID

	var strongconnect func(v entity.ID)
	strongconnect = func(v entity.ID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Edges[v] {
			if _, visited := indices[w]; !visited {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var component []entity.ID
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				component = append(component, w)
				if w == v {
					break
				}
			}
			components = append(components, component)
		}
	}

	for v := range g.Edges {
		if _, visited := indices[v]; !visited {
			strongconnect(v)
		}
	}

	return components
}

// HasSelfEdge reports whether node has an edge to itself.
func (g *Graph) HasSelfEdge(node entity.ID) bool {
	for _, t := range g.Edges[node] {
		if t == node {
			return true
		}
	}
	return false
}

// TopologicalSort returns vertices in dependency-first order: every
// vertex appears after everything it depends on (Kahn's algorithm over
// the s->t "s precedes t" edges of §4.3). Ties within one round of
// available (all-dependencies-resolved) vertices are broken with less,
// so the emitter can order same-round vertices by kind priority and
// name for deterministic output (§4.5/§6). Returns ErrCyclic if the
// graph still contains a cycle.
func (g *Graph) TopologicalSort(less func(a, b entity.ID) bool) ([]entity.ID, error) {
	inDegree := make(map[entity.ID]int, len(g.Edges))
	for node := range g.Edges {
		inDegree[node] = 0
	}
	for _, dependents := range g.Edges {
		for _, dependent := range dependents {
			inDegree[dependent]++
		}
	}

	var ready []entity.ID
	for node, d := range inDegree {
		if d == 0 {
			ready = append(ready, node)
		}
	}

	result := make([]entity.ID, 0, len(inDegree))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return less(ready[i], ready[j]) })
		round := ready
		ready = nil
		for _, node := range round {
			result = append(result, node)

			for _, dependent := range g.Edges[node] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					ready = append(ready, dependent)
				}
			}
		}
	}

	if len(result) != len(inDegree) {
		return nil, ErrCyclic
	}

	return result, nil
}
