// Package collaborators states the interface of every subsystem spec.md
// marks as an external collaborator (§1, §6): the C preprocessor driver,
// the call-graph visualiser, the spec-migration merger, and the plugin
// hook point. None of these are implemented here — only their contract
// with the rest of modslice, so a future implementation (or a plugin)
// has a concrete Go interface to satisfy.
package collaborators

import "github.com/modslice/modslice/internal/entity"

// Preprocessor resolves #ifdef/#ifndef gating and macro expansion ahead
// of internal/escrow seeing the text. modslice's own pipeline never
// implements this — §1 Non-goals excludes "the C preprocessor" outright
// — but a caller wiring in a real preprocessor (or `cpp -E` run against
// a specific .config) satisfies this interface and hands its output to
// internal/pipeline.Run as already-preprocessed source.
type Preprocessor interface {
	// Preprocess expands macros and resolves conditional compilation in
	// src using the given include search roots, returning text ready
	// for internal/escrow.Adapt.
	Preprocess(src string, includeRoots []string) (string, error)
}

// Visualiser renders a sliced dependency graph for human inspection
// (§1 Non-goals: "a call-graph visualiser"). It consumes the same
// entity/graph types internal/emit does, so a concrete implementation
// can sit directly downstream of internal/slice.Slice without any
// adapter layer.
type Visualiser interface {
	// Render produces a visualisation (e.g. Graphviz DOT, or an SVG) of
	// the given entities restricted to vertices, in whatever format the
	// concrete implementation chooses.
	Render(entities []*entity.Entity, vertices []entity.ID) ([]byte, error)
}

// SpecMigrationMerger reconciles a hand-edited slice output against a
// newer run of the pipeline over changed source (§1 Non-goals: "a
// spec-migration merger"). Out of scope for modslice itself; stated so
// a downstream tool can plug into the same Output shape internal/emit
// produces.
type SpecMigrationMerger interface {
	// Merge reconciles base (the prior emitted output) with next (a
	// fresh run's output), returning the merged text plus any conflicts
	// it could not resolve automatically.
	Merge(base, next string) (merged string, conflicts []string, err error)
}

// Plugin is the hook point named in §1 Non-goals ("a plugin system").
// A plugin observes the pipeline's stages without being able to alter
// the slicer's cycle-breaking policy or the meta-graph; this keeps the
// core deterministic regardless of what plugins are loaded.
type Plugin interface {
	// Name identifies the plugin for logging and for --verbose output.
	Name() string

	// OnEntitiesParsed is called once per area, after internal/cparse
	// has populated the registry but before internal/graph builds edges.
	OnEntitiesParsed(area entity.Area, entities []*entity.Entity)

	// OnSliceComplete is called once, after internal/slice.Slice returns,
	// with the final vertex set that will be handed to internal/emit.
	OnSliceComplete(vertices []entity.ID)
}
