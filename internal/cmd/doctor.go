package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modslice/modslice/internal/cparse"
	"github.com/modslice/modslice/internal/entity"
	"github.com/modslice/modslice/internal/escrow"
	"github.com/modslice/modslice/internal/graph"
)

var (
	doctorKernelSrc string
	doctorModuleSrc string
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run entity extraction and graph construction without slicing",
	Long: `doctor runs stages A through E (escrow adaption, entity parsing, and
graph construction) over --kernel-src and --module-src without picking
any slice target, and reports what it found: entity counts per area and
kind, duplicate-name warnings, and the size of the resulting dependency
graph. It never writes output and never requires --target.

Examples:
  modslice doctor --kernel-src /usr/src/linux --module-src ./driver`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorKernelSrc, "kernel-src", "", "kernel source tree directory")
	doctorCmd.Flags().StringVar(&doctorModuleSrc, "module-src", "", "out-of-tree module source tree directory")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	if doctorModuleSrc == "" {
		return &InputError{Reason: "--module-src is required"}
	}
	if doctorKernelSrc == "" {
		return &InputError{Reason: "--kernel-src is required"}
	}

	kernelSrc, err := readArea(doctorKernelSrc)
	if err != nil {
		return err
	}
	moduleSrc, err := readArea(doctorModuleSrc)
	if err != nil {
		return err
	}

	sentinels := escrow.DefaultSentinels()
	registry := entity.NewRegistry()
	var warnings []cparse.Warning

	kernelAt := escrow.Adapt(kernelSrc, sentinels)
	moduleAt := escrow.Adapt(moduleSrc, sentinels)

	kp := cparse.NewParser(registry, entity.Kernel)
	_, kwarns := kp.ParseAll(kernelAt.Body, kernelAt.Escrows[escrow.MacroLine])
	warnings = append(warnings, kwarns...)

	mp := cparse.NewParser(registry, entity.Module)
	_, mwarns := mp.ParseAll(moduleAt.Body, moduleAt.Escrows[escrow.MacroLine])
	warnings = append(warnings, mwarns...)

	entities := registry.All()
	g := graph.BuildFromEntities(entities)

	fmt.Println("# modslice doctor")
	fmt.Printf("# Parsed %d entities from --kernel-src, %d from --module-src\n",
		countArea(entities, entity.Kernel), countArea(entities, entity.Module))

	fmt.Println("# Entity counts by area and kind:")
	for _, area := range []entity.Area{entity.Kernel, entity.Module} {
		for kind := entity.Macro; kind <= entity.Function; kind++ {
			n := countAreaKind(entities, area, kind)
			if n > 0 {
				fmt.Printf("#   %-6s %-12s %d\n", area, kind, n)
			}
		}
	}

	if len(warnings) == 0 {
		fmt.Println("#   ✓ No parse warnings")
	} else {
		fmt.Printf("#   ⚠ %d parse warning(s)\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("#     - %s\n", w.Message)
		}
	}

	fmt.Printf("# Graph: %d vertices, %d edges\n", g.NodeCount(), g.EdgeCount())

	sccCount := 0
	var cycleExample []entity.ID
	for _, comp := range g.SCCs() {
		if len(comp) > 1 {
			sccCount++
			if cycleExample == nil {
				cycleExample = comp
			}
		}
	}
	if sccCount == 0 {
		fmt.Println("#   ✓ No multi-vertex cycles")
	} else {
		fmt.Printf("#   ⚠ %d multi-vertex cycle(s) present (resolved at slice time, not here)\n", sccCount)
		if path := exampleCyclePath(g, registry, cycleExample); path != "" {
			fmt.Printf("#     e.g. %s\n", path)
		}
	}

	fmt.Println("# Highest fan-out entities (most transitive dependents):")
	for _, id := range topFanOut(g, entities, 3) {
		e := registry.Get(id)
		fmt.Printf("#   %-20s %d\n", e.Name, len(g.TransitiveClosure(id)))
	}

	return nil
}

// exampleCyclePath renders one concrete cycle within comp by chaining
// the shortest forward path between its two lowest-ID members with the
// path back, so a multi-vertex cycle SCCs reports shows an actual loop
// rather than just a component size.
func exampleCyclePath(g *graph.Graph, registry *entity.Registry, comp []entity.ID) string {
	if len(comp) < 2 {
		return ""
	}
	sorted := append([]entity.ID(nil), comp...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	a, b := sorted[0], sorted[1]

	there := g.ShortestPath(a, b, "forward")
	back := g.ShortestPath(b, a, "forward")
	if there == nil || back == nil {
		return ""
	}

	names := make([]string, 0, len(there)+len(back))
	for _, id := range there {
		names = append(names, registry.Get(id).Name)
	}
	for _, id := range back[1:] {
		names = append(names, registry.Get(id).Name)
	}
	return strings.Join(names, " -> ")
}

// topFanOut ranks entities by the size of their forward transitive
// closure — how many other entities depend on them, directly or
// indirectly — and returns up to n ids with a nonzero count, highest
// first.
func topFanOut(g *graph.Graph, entities []*entity.Entity, n int) []entity.ID {
	type ranked struct {
		id    entity.ID
		count int
	}
	ranks := make([]ranked, 0, len(entities))
	for _, e := range entities {
		ranks = append(ranks, ranked{e.ID, len(g.TransitiveClosure(e.ID))})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].count != ranks[j].count {
			return ranks[i].count > ranks[j].count
		}
		return ranks[i].id < ranks[j].id
	})

	ids := make([]entity.ID, 0, n)
	for _, r := range ranks {
		if r.count == 0 || len(ids) == n {
			break
		}
		ids = append(ids, r.id)
	}
	return ids
}

func countArea(entities []*entity.Entity, area entity.Area) int {
	n := 0
	for _, e := range entities {
		if e.Area == area {
			n++
		}
	}
	return n
}

func countAreaKind(entities []*entity.Entity, area entity.Area, kind entity.Kind) int {
	n := 0
	for _, e := range entities {
		if e.Area == area && e.Kind == kind {
			n++
		}
	}
	return n
}
