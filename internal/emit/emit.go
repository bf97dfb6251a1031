// Package emit implements Component G (§4.5): a deterministic
// topological drain of the sliced graph into the six textual
// accumulators spec.md's bucket table names, followed by escrow
// restoration and either four files or one concatenated file.
package emit

import (
	"fmt"
	"strings"

	"github.com/modslice/modslice/internal/entity"
	"github.com/modslice/modslice/internal/escrow"
	"github.com/modslice/modslice/internal/graph"
)

// Options controls the output flags of §6/§A.2.
type Options struct {
	SingleFile             bool
	ElideNonTargetBodies   bool
	RemoveUnusedEnumFields bool
}

// Output holds the six accumulators, post-restoration, plus whichever
// combined form the caller asked for.
type Output struct {
	KernelMacro string
	Kernel      string
	Extern      string
	ModuleMacro string
	ModuleH     string
	ModuleC     string

	// Single is the single-file concatenation (only populated when
	// Options.SingleFile was set).
	Single string
}

// ErrCyclic is returned if g still contains a cycle — this
// should never happen for a slice internal/slice has already broken,
// and signals a slicer bug rather than a user-facing condition (§4.5:
// "slicer guarantees it cannot happen"). Remaining lists every vertex
// of the slice passed to Emit, not only the ones left undrained.
type ErrCyclic struct {
	Remaining []entity.ID
}

func (e *ErrCyclic) Error() string {
	return fmt.Sprintf("emit: cycle in graph among %d sliced vertices", len(e.Remaining))
}

// Emit drains all of g (the subgraph internal/slice returned; vertices
// is used only to fill ErrCyclic) in topological order, kind-
// priority/name tiebreak within each round, routes each entity's code
// to its bucket, and restores escrowed text. targets identifies the
// slice's original target functions, consulted only when
// Options.ElideNonTargetBodies is set.
//
// atKernel and atModule are the two areas' own escrow tables, restored
// independently rather than merged: every bucket is populated by
// exactly one area's entities (kernel.h/extern.h/kernel-macro from
// Kernel, module.h/module.c/module-macro from Module), and each area's
// placeholder indices were assigned starting at zero by its own call
// to escrow.Adapt, so restoring a bucket against the wrong area's
// table would silently substitute another escrowed string entirely.
func Emit(g *graph.Graph, registry *entity.Registry, vertices []entity.ID, atKernel, atModule *escrow.AdaptedText, targets map[entity.ID]struct{}, opts Options) (*Output, error) {
	less := func(a, b entity.ID) bool {
		ea, eb := registry.Get(a), registry.Get(b)
		if ea.Kind.Priority() != eb.Kind.Priority() {
			return ea.Kind.Priority() < eb.Kind.Priority()
		}
		return ea.Name < eb.Name
	}

	order, err := g.TopologicalSort(less)
	if err != nil {
		return nil, &ErrCyclic{Remaining: vertices}
	}

	var out Output
	var kernelMacro, kernel, extern, moduleMacro, moduleH, moduleC strings.Builder

	for _, id := range order {
		e := registry.Get(id)
		text := renderEntity(e, targets, opts)

		switch bucketFor(e) {
		case bucketKernelMacro:
			kernelMacro.WriteString(text)
		case bucketKernel:
			kernel.WriteString(text)
		case bucketExtern:
			extern.WriteString(text)
		case bucketModuleMacro:
			moduleMacro.WriteString(text)
		case bucketModuleH:
			moduleH.WriteString(text)
		case bucketModuleC:
			moduleC.WriteString(text)
		}
	}

	out.KernelMacro = escrow.Restore(kernelMacro.String(), atKernel)
	out.Kernel = escrow.Restore(kernel.String(), atKernel)
	out.Extern = escrow.Restore(extern.String(), atKernel)
	out.ModuleMacro = escrow.Restore(moduleMacro.String(), atModule)
	out.ModuleH = escrow.Restore(moduleH.String(), atModule)
	out.ModuleC = escrow.Restore(moduleC.String(), atModule)

	if opts.SingleFile {
		out.Single = concatenate(&out)
	} else {
		out.ModuleC = includePrelude() + out.ModuleC
	}

	return &out, nil
}

// renderEntity produces the text to append for e: its forward
// declaration (if any) followed by its code, or — for a non-target
// module function under ElideNonTargetBodies — a prototype only.
func renderEntity(e *entity.Entity, targets map[entity.ID]struct{}, opts Options) string {
	var sb strings.Builder
	if e.ForwardDeclaration != "" {
		sb.WriteString(e.ForwardDeclaration)
		sb.WriteString("\n")
	}

	if opts.ElideNonTargetBodies && e.Kind == entity.Function && e.Area == entity.Module {
		if _, isTarget := targets[e.ID]; !isTarget {
			if proto := prototypeOf(e.Code); proto != "" {
				sb.WriteString(proto)
				sb.WriteString("\n")
				return sb.String()
			}
		}
	}

	if opts.RemoveUnusedEnumFields && e.Kind == entity.Enum {
		// TODO: dropping an unreferenced member here requires
		// renumbering every later member whose value was implicit
		// (C assigns unset enumerators sequentially from the prior
		// one), which means re-deriving each member's numeric value
		// from its position rather than just deleting a line. The
		// flag is accepted and plumbed through so callers can opt in
		// once that rewrite exists; until then it has no effect.
	}

	sb.WriteString(e.Code)
	sb.WriteString("\n")
	return sb.String()
}

func prototypeOf(code string) string {
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

type bucket int

const (
	bucketKernelMacro bucket = iota
	bucketKernel
	bucketExtern
	bucketModuleMacro
	bucketModuleH
	bucketModuleC
)

// bucketFor implements the routing table of §4.5.
func bucketFor(e *entity.Entity) bucket {
	switch e.Area {
	case entity.Kernel:
		switch e.Kind {
		case entity.Declaration, entity.Global:
			return bucketExtern
		case entity.Macro:
			return bucketKernelMacro
		default: // Typedef, Enum, Struct
			return bucketKernel
		}
	default: // Module
		switch e.Kind {
		case entity.Function:
			return bucketModuleC
		case entity.Macro:
			return bucketModuleMacro
		default: // Typedef, Enum, Struct, Global, Declaration
			return bucketModuleH
		}
	}
}

func includePrelude() string {
	return "#include \"kernel.h\"\n#include \"extern.h\"\n#include \"module.h\"\n"
}

// concatenate joins the six buckets into one file in the fixed order
// §4.5 specifies, separated by a banner comment naming each section.
func concatenate(out *Output) string {
	sections := []struct {
		name string
		text string
	}{
		{"kernel_macro", out.KernelMacro},
		{"module_macro", out.ModuleMacro},
		{"kernel", out.Kernel},
		{"extern", out.Extern},
		{"module_h", out.ModuleH},
		{"module_c", out.ModuleC},
	}

	var sb strings.Builder
	for _, s := range sections {
		if s.text == "" {
			continue
		}
		sb.WriteString("/* ---- ")
		sb.WriteString(s.name)
		sb.WriteString(" ---- */\n")
		sb.WriteString(s.text)
		sb.WriteString("\n")
	}
	return sb.String()
}
