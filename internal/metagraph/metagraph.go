// Package metagraph declares the fixed schema of §4.3: which
// (area, kind) pairs may legally depend on which. The graph builder
// (internal/graph) drives edge discovery entirely off this table — it
// never infers allowed edges from the data itself.
package metagraph

import "github.com/modslice/modslice/internal/entity"

// Edge declares that entities of (SourceArea, SourceKind) may be
// depended upon by entities of (TargetArea, TargetKind): a vertex of
// the source kind, if textually referenced by a vertex of the target
// kind, must be emitted before it.
type Edge struct {
	SourceArea entity.Area
	SourceKind entity.Kind
	TargetArea entity.Area
	TargetKind entity.Kind
}

// k and a are local shorthands to keep the table below legible.
const (
	kMacro   = entity.Macro
	kTypedef = entity.Typedef
	kEnum    = entity.Enum
	kStruct  = entity.Struct
	kGlobal  = entity.Global
	kDecl    = entity.Declaration
	kFunc    = entity.Function

	aKernel = entity.Kernel
	aModule = entity.Module
)

// Edges is the fixed meta-graph of §4.3, transcribed verbatim from the
// table in spec.md. Kernel entities may be pulled into the module
// slice; module entities never produce edges into the kernel area,
// since the external preprocessor has already resolved what the module
// uses from the kernel. Functions never produce types, so there is no
// function → struct/typedef/enum edge in either area.
var Edges = []Edge{
	// kernel.macro → kernel.{macro, struct, typedef, enum, decl, global}
	{aKernel, kMacro, aKernel, kMacro},
	{aKernel, kMacro, aKernel, kStruct},
	{aKernel, kMacro, aKernel, kTypedef},
	{aKernel, kMacro, aKernel, kEnum},
	{aKernel, kMacro, aKernel, kDecl},
	{aKernel, kMacro, aKernel, kGlobal},
	// kernel.macro → module.{macro, struct, function, typedef, enum}
	{aKernel, kMacro, aModule, kMacro},
	{aKernel, kMacro, aModule, kStruct},
	{aKernel, kMacro, aModule, kFunc},
	{aKernel, kMacro, aModule, kTypedef},
	{aKernel, kMacro, aModule, kEnum},

	// kernel.struct → kernel.{macro, struct, decl, typedef, global}
	{aKernel, kStruct, aKernel, kMacro},
	{aKernel, kStruct, aKernel, kStruct},
	{aKernel, kStruct, aKernel, kDecl},
	{aKernel, kStruct, aKernel, kTypedef},
	{aKernel, kStruct, aKernel, kGlobal},
	// kernel.struct → module.{macro, struct, function, typedef, global}
	{aKernel, kStruct, aModule, kMacro},
	{aKernel, kStruct, aModule, kStruct},
	{aKernel, kStruct, aModule, kFunc},
	{aKernel, kStruct, aModule, kTypedef},
	{aKernel, kStruct, aModule, kGlobal},

	// kernel.decl → kernel.macro
	{aKernel, kDecl, aKernel, kMacro},
	// kernel.decl → module.{macro, function}
	{aKernel, kDecl, aModule, kMacro},
	{aKernel, kDecl, aModule, kFunc},

	// kernel.typedef → kernel.{macro, struct, decl, typedef, enum, global}
	{aKernel, kTypedef, aKernel, kMacro},
	{aKernel, kTypedef, aKernel, kStruct},
	{aKernel, kTypedef, aKernel, kDecl},
	{aKernel, kTypedef, aKernel, kTypedef},
	{aKernel, kTypedef, aKernel, kEnum},
	{aKernel, kTypedef, aKernel, kGlobal},
	// kernel.typedef → module.{macro, struct, function, typedef, enum, global}
	{aKernel, kTypedef, aModule, kMacro},
	{aKernel, kTypedef, aModule, kStruct},
	{aKernel, kTypedef, aModule, kFunc},
	{aKernel, kTypedef, aModule, kTypedef},
	{aKernel, kTypedef, aModule, kEnum},
	{aKernel, kTypedef, aModule, kGlobal},

	// kernel.enum → kernel.{macro, struct, decl, typedef, enum, global}
	{aKernel, kEnum, aKernel, kMacro},
	{aKernel, kEnum, aKernel, kStruct},
	{aKernel, kEnum, aKernel, kDecl},
	{aKernel, kEnum, aKernel, kTypedef},
	{aKernel, kEnum, aKernel, kEnum},
	{aKernel, kEnum, aKernel, kGlobal},
	// kernel.enum → module.{macro, struct, function, typedef, enum, global}
	{aKernel, kEnum, aModule, kMacro},
	{aKernel, kEnum, aModule, kStruct},
	{aKernel, kEnum, aModule, kFunc},
	{aKernel, kEnum, aModule, kTypedef},
	{aKernel, kEnum, aModule, kEnum},
	{aKernel, kEnum, aModule, kGlobal},

	// kernel.global → kernel.macro
	{aKernel, kGlobal, aKernel, kMacro},
	// kernel.global → module.{macro, function}
	{aKernel, kGlobal, aModule, kMacro},
	{aKernel, kGlobal, aModule, kFunc},

	// module.macro → module.{macro, struct, function, typedef, enum}
	{aModule, kMacro, aModule, kMacro},
	{aModule, kMacro, aModule, kStruct},
	{aModule, kMacro, aModule, kFunc},
	{aModule, kMacro, aModule, kTypedef},
	{aModule, kMacro, aModule, kEnum},

	// module.struct → module.{macro, struct, function, typedef, global}
	{aModule, kStruct, aModule, kMacro},
	{aModule, kStruct, aModule, kStruct},
	{aModule, kStruct, aModule, kFunc},
	{aModule, kStruct, aModule, kTypedef},
	{aModule, kStruct, aModule, kGlobal},

	// module.function → module.{macro, function}
	{aModule, kFunc, aModule, kMacro},
	{aModule, kFunc, aModule, kFunc},

	// module.typedef → module.{macro, struct, function, typedef, enum, global}
	{aModule, kTypedef, aModule, kMacro},
	{aModule, kTypedef, aModule, kStruct},
	{aModule, kTypedef, aModule, kFunc},
	{aModule, kTypedef, aModule, kTypedef},
	{aModule, kTypedef, aModule, kEnum},
	{aModule, kTypedef, aModule, kGlobal},

	// module.enum → module.{macro, struct, function, typedef, enum, global}
	{aModule, kEnum, aModule, kMacro},
	{aModule, kEnum, aModule, kStruct},
	{aModule, kEnum, aModule, kFunc},
	{aModule, kEnum, aModule, kTypedef},
	{aModule, kEnum, aModule, kEnum},
	{aModule, kEnum, aModule, kGlobal},

	// module.global → module.{macro, function}
	{aModule, kGlobal, aModule, kMacro},
	{aModule, kGlobal, aModule, kFunc},
}

// Allows reports whether the meta-graph permits a (sourceArea,
// sourceKind) entity to be depended upon by a (targetArea, targetKind)
// entity.
func Allows(sourceArea entity.Area, sourceKind entity.Kind, targetArea entity.Area, targetKind entity.Kind) bool {
	for _, e := range Edges {
		if e.SourceArea == sourceArea && e.SourceKind == sourceKind &&
			e.TargetArea == targetArea && e.TargetKind == targetKind {
			return true
		}
	}
	return false
}
