package slice

import (
	"testing"

	"github.com/modslice/modslice/internal/entity"
	"github.com/modslice/modslice/internal/graph"
)

func TestResolveTargets_UnknownNameFails(t *testing.T) {
	r := entity.NewRegistry()
	r.New(entity.Function, entity.Module, "f", "int f(void){return 0;}",
		map[string]struct{}{"f": {}}, map[string]struct{}{"f": {}})

	_, err := ResolveTargets(r.All(), []string{"g"})
	if err == nil {
		t.Fatal("expected an error for an unknown target")
	}
	if _, ok := err.(*ErrUnknownTarget); !ok {
		t.Fatalf("expected *ErrUnknownTarget, got %T", err)
	}
}

func TestSlice_SimpleChainNoCycle(t *testing.T) {
	r := entity.NewRegistry()
	k := r.New(entity.Macro, entity.Module, "K", "#define K 3",
		map[string]struct{}{"K": {}}, map[string]struct{}{"K": {}})
	g := r.New(entity.Function, entity.Module, "g", "int g(void){return K;}",
		map[string]struct{}{"g": {}}, map[string]struct{}{"g": {}, "K": {}})

	dg := graph.BuildFromEntities(r.All())
	targets, err := ResolveTargets(r.All(), []string{"g"})
	if err != nil {
		t.Fatal(err)
	}

	sub, vertices, err := Slice(dg, r, targets)
	if err != nil {
		t.Fatal(err)
	}
	if len(vertices) != 2 {
		t.Fatalf("expected 2 vertices (K, g), got %d: %v", len(vertices), vertices)
	}
	if sub.OutDegree(k.ID) != 1 {
		t.Errorf("expected K to have one dependent (g)")
	}
	_ = g
}

func TestSlice_FunctionCycleGetsForwardDeclaration(t *testing.T) {
	r := entity.NewRegistry()
	a := r.New(entity.Function, entity.Module, "a", "int a(void){return b();}",
		map[string]struct{}{"a": {}}, map[string]struct{}{"a": {}, "b": {}})
	b := r.New(entity.Function, entity.Module, "b", "int b(void){return a();}",
		map[string]struct{}{"b": {}}, map[string]struct{}{"b": {}, "a": {}})

	dg := graph.BuildFromEntities(r.All())
	targets, err := ResolveTargets(r.All(), []string{"a"})
	if err != nil {
		t.Fatal(err)
	}

	sub, vertices, err := Slice(dg, r, targets)
	if err != nil {
		t.Fatalf("unexpected cycle error: %v", err)
	}
	if len(vertices) != 2 {
		t.Fatalf("expected {a, b}, got %v", vertices)
	}

	order, err := sub.TopologicalSort(func(x, y entity.ID) bool { return x < y })
	if err != nil {
		t.Fatalf("expected the cycle to be fully broken, got: %v", err)
	}
	if len(order) != 2 {
		t.Fatalf("expected a full order of 2 vertices, got %v", order)
	}

	if (a.ForwardDeclaration == "") == (b.ForwardDeclaration == "") {
		t.Error("expected exactly one of a/b to receive a forward declaration")
	}
}

func TestSlice_TypedefStructCycleDropsEdgeIntoTypedef(t *testing.T) {
	r := entity.NewRegistry()
	st := r.New(entity.Struct, entity.Module, "node", "struct node { node_t *next; };",
		map[string]struct{}{"node": {}}, map[string]struct{}{"node": {}, "node_t": {}})
	td := r.New(entity.Typedef, entity.Module, "node_t", "typedef struct node node_t;",
		map[string]struct{}{"node_t": {}}, map[string]struct{}{"node_t": {}, "node": {}})
	fn := r.New(entity.Function, entity.Module, "use", "void use(node_t *n){}",
		map[string]struct{}{"use": {}}, map[string]struct{}{"use": {}, "node_t": {}})

	dg := graph.BuildFromEntities(r.All())
	targets, err := ResolveTargets(r.All(), []string{"use"})
	if err != nil {
		t.Fatal(err)
	}

	sub, _, err := Slice(dg, r, targets)
	if err != nil {
		t.Fatalf("unexpected cycle error: %v", err)
	}

	order, err := sub.TopologicalSort(func(x, y entity.ID) bool { return x < y })
	if err != nil {
		t.Fatalf("expected the typedef/struct cycle to be fully broken: %v", err)
	}

	pos := make(map[entity.ID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	if pos[st.ID] >= pos[td.ID] {
		t.Errorf("expected struct to precede its typedef, got order %v", order)
	}
	_ = fn
}

func TestSlice_SameKindSelfCycleBroken(t *testing.T) {
	r := entity.NewRegistry()
	m1 := r.New(entity.Macro, entity.Module, "M1", "#define M1 M2",
		map[string]struct{}{"M1": {}}, map[string]struct{}{"M1": {}, "M2": {}})
	m2 := r.New(entity.Macro, entity.Module, "M2", "#define M2 M1",
		map[string]struct{}{"M2": {}}, map[string]struct{}{"M2": {}, "M1": {}})
	fn := r.New(entity.Function, entity.Module, "use", "int use(void){return M1;}",
		map[string]struct{}{"use": {}}, map[string]struct{}{"use": {}, "M1": {}})

	dg := graph.BuildFromEntities(r.All())
	targets, err := ResolveTargets(r.All(), []string{"use"})
	if err != nil {
		t.Fatal(err)
	}

	sub, _, err := Slice(dg, r, targets)
	if err != nil {
		t.Fatalf("unexpected cycle error: %v", err)
	}
	if _, err := sub.TopologicalSort(func(x, y entity.ID) bool { return x < y }); err != nil {
		t.Fatalf("expected macro/macro cycle to be fully broken: %v", err)
	}
	_, _ = m1, m2
	_ = fn
}

// TestSlice_SameKindCycleWithNoAdjacentEdgesBroken builds a 5-member
// same-kind strongly connected component whose only edges run between
// members that are not adjacent in sorted-ID order (0->2->4->1->3->0),
// the "second Hamiltonian cycle" shape that a sorted-adjacent-only scan
// would find nothing to remove from.
func TestSlice_SameKindCycleWithNoAdjacentEdgesBroken(t *testing.T) {
	r := entity.NewRegistry()
	m0 := r.New(entity.Macro, entity.Module, "M0", "#define M0 M3",
		map[string]struct{}{"M0": {}}, map[string]struct{}{"M0": {}, "M3": {}})
	m1 := r.New(entity.Macro, entity.Module, "M1", "#define M1 M4",
		map[string]struct{}{"M1": {}}, map[string]struct{}{"M1": {}, "M4": {}})
	m2 := r.New(entity.Macro, entity.Module, "M2", "#define M2 M0",
		map[string]struct{}{"M2": {}}, map[string]struct{}{"M2": {}, "M0": {}})
	m3 := r.New(entity.Macro, entity.Module, "M3", "#define M3 M1",
		map[string]struct{}{"M3": {}}, map[string]struct{}{"M3": {}, "M1": {}})
	m4 := r.New(entity.Macro, entity.Module, "M4", "#define M4 M2",
		map[string]struct{}{"M4": {}}, map[string]struct{}{"M4": {}, "M2": {}})
	fn := r.New(entity.Function, entity.Module, "use",
		"int use(void){return M0+M1+M2+M3+M4;}",
		map[string]struct{}{"use": {}},
		map[string]struct{}{"use": {}, "M0": {}, "M1": {}, "M2": {}, "M3": {}, "M4": {}})

	dg := graph.BuildFromEntities(r.All())
	targets, err := ResolveTargets(r.All(), []string{"use"})
	if err != nil {
		t.Fatal(err)
	}

	sub, _, err := Slice(dg, r, targets)
	if err != nil {
		t.Fatalf("unexpected cycle error: %v", err)
	}
	if _, err := sub.TopologicalSort(func(x, y entity.ID) bool { return x < y }); err != nil {
		t.Fatalf("expected the 5-member macro cycle to be fully broken: %v", err)
	}
	_, _, _, _, _ = m0, m1, m2, m3, m4
	_ = fn
}

func TestSlice_MixedKindCycleIsFatal(t *testing.T) {
	r := entity.NewRegistry()
	fn := r.New(entity.Function, entity.Module, "f", "int f(void){return 0;}",
		map[string]struct{}{"f": {}}, map[string]struct{}{"f": {}, "M": {}})
	mac := r.New(entity.Macro, entity.Module, "M", "#define M f()",
		map[string]struct{}{"M": {}}, map[string]struct{}{"M": {}, "f": {}})

	dg := graph.BuildFromEntities(r.All())
	targets, err := ResolveTargets(r.All(), []string{"f"})
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = Slice(dg, r, targets)
	if err == nil {
		t.Fatal("expected a CycleError for a Function/Macro cycle")
	}
	if _, ok := err.(*CycleError); !ok {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	_, _ = fn, mac
}
