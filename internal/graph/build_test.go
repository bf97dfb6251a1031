package graph

import (
	"testing"

	"github.com/modslice/modslice/internal/entity"
)

func TestBuildFromEntities_EdgeDirectionIsDependencyToDependent(t *testing.T) {
	r := entity.NewRegistry()
	macro := r.New(entity.Macro, entity.Module, "K",
		"#define K 3",
		map[string]struct{}{"K": {}},
		map[string]struct{}{"K": {}},
	)
	fn := r.New(entity.Function, entity.Module, "g",
		"int g(void){return K;}",
		map[string]struct{}{"g": {}},
		map[string]struct{}{"g": {}, "K": {}},
	)

	g := BuildFromEntities(r.All())

	// K must precede g: edge K -> g, i.e. g depends on K.
	if got := g.Successors(macro.ID); len(got) != 1 || got[0] != fn.ID {
		t.Fatalf("expected K -> g edge, got successors %v", got)
	}
	if got := g.Predecessors(fn.ID); len(got) != 1 || got[0] != macro.ID {
		t.Fatalf("expected g's predecessor to be K, got %v", got)
	}

	// Given a compilation target g, its dependency closure must contain K.
	deps := g.ReverseTransitiveClosure(fn.ID)
	if len(deps) != 1 || deps[0] != macro.ID {
		t.Fatalf("expected g's dependency closure to be {K}, got %v", deps)
	}
}

func TestBuildFromEntities_NoEdgeWhenMetaGraphForbids(t *testing.T) {
	r := entity.NewRegistry()
	// A module function never feeds a kernel struct (no such meta-edge).
	fn := r.New(entity.Function, entity.Module, "helper",
		"static int helper(void){return 0;}",
		map[string]struct{}{"helper": {}},
		map[string]struct{}{"helper": {}},
	)
	kstruct := r.New(entity.Struct, entity.Kernel, "sock",
		"struct sock { void (*helper)(void); };",
		map[string]struct{}{"sock": {}},
		map[string]struct{}{"sock": {}, "helper": {}},
	)

	g := BuildFromEntities(r.All())

	if got := g.Successors(fn.ID); len(got) != 0 {
		t.Fatalf("expected no edge from a module function into a kernel struct, got %v", got)
	}
	_ = kstruct
}

func TestBuildFromEntities_IsolatedEntityStillAVertex(t *testing.T) {
	r := entity.NewRegistry()
	e := r.New(entity.Global, entity.Module, "unused", "int unused;",
		map[string]struct{}{"unused": {}}, map[string]struct{}{"unused": {}})

	g := BuildFromEntities(r.All())
	if g.NodeCount() != 1 {
		t.Fatalf("expected 1 vertex, got %d", g.NodeCount())
	}
	if len(g.Successors(e.ID)) != 0 || len(g.Predecessors(e.ID)) != 0 {
		t.Error("expected isolated entity to have no edges")
	}
}
