// Package cparse holds the entity parsers (§4.2, Component B): one
// greedy-scan-then-classify pass per construct kind (macro, typedef,
// enum, struct/union, global, extern declaration, function definition).
// None of these is a C grammar — each recognises a construct by a
// leading keyword or name/paren prefix, then recovers its extent with
// the brace/paren balancer in balance.go. This is deliberately
// regex-grade, not a parser: anything looking enough like the target
// shape is accepted (§1 Non-goals: "not a full C11 parser").
//
// Parsers consume escrow-adapted text (internal/escrow): comments,
// string/char literals and GNU attributes have already been replaced
// by placeholders, so none of the scanners below has to reason about
// braces or semicolons hiding inside a string or a comment. Macro
// lines are escrowed too, but for a different reason: the module's
// #define text must still reach ParseMacros, which is why escrow hands
// macro-line text back out separately (AdaptedText.Escrows[MacroLine])
// rather than folding it into the searchable body like the other
// classes.
package cparse

import (
	"fmt"

	"github.com/modslice/modslice/internal/entity"
)

// Warning is a non-fatal diagnostic raised while parsing (duplicate
// definitions, discarded keyword false-positives, unterminated
// constructs). The pipeline driver (internal/pipeline) surfaces these
// to the user without failing the run.
type Warning struct {
	Message string
}

func (w Warning) String() string { return w.Message }

func warnf(format string, args ...interface{}) Warning {
	return Warning{Message: fmt.Sprintf(format, args...)}
}

// Parser extracts entities from one source area's adapted text into a
// shared registry, coalescing duplicate names per kind (keep the first
// definition, warn on repeats — §1 Non-goals: "does not handle
// duplicate-named functions gracefully" beyond this coalescing rule).
type Parser struct {
	registry *entity.Registry
	area     entity.Area
	seen     map[entity.Kind]map[string]bool
	anon     int
	warnings []Warning

	// claimed holds the [start,end) byte ranges ParseTypedefs,
	// ParseEnums, ParseStructs, ParseDeclarations and ParseFunctions
	// have already carved out of body, so ParseGlobals (which runs
	// last and matches anything declarator-shaped) does not also fire
	// on, say, a struct member line that happens to look like a
	// file-scope declaration.
	claimed [][2]int
}

// NewParser returns a parser that registers entities for area into r.
func NewParser(r *entity.Registry, area entity.Area) *Parser {
	return &Parser{
		registry: r,
		area:     area,
		seen:     make(map[entity.Kind]map[string]bool),
	}
}

// Warnings returns every warning raised so far.
func (p *Parser) Warnings() []Warning { return p.warnings }

func (p *Parser) warn(w Warning) { p.warnings = append(p.warnings, w) }

// anonName synthesizes a unique name for an anonymous construct (e.g.
// an unnamed enum), since the entity model requires Name to be
// non-empty and the graph indexes entities by the identifiers they
// define.
func (p *Parser) anonName(prefix string) string {
	p.anon++
	return fmt.Sprintf("__anon_%s_%d", prefix, p.anon)
}

// claim registers name as seen for kind, returning false (and a
// warning) if it was already claimed — the coalescing policy of §1.
func (p *Parser) claim(kind entity.Kind, name string) bool {
	if p.seen[kind] == nil {
		p.seen[kind] = make(map[string]bool)
	}
	if p.seen[kind][name] {
		p.warn(warnf("duplicate %s %q in %s area, keeping first definition", kind, name, p.area))
		return false
	}
	p.seen[kind][name] = true
	return true
}

func (p *Parser) define(kind entity.Kind, name, code string, ids, tags map[string]struct{}) *entity.Entity {
	if !p.claim(kind, name) {
		return nil
	}
	return p.registry.New(kind, p.area, name, code, ids, tags)
}

// markClaimed records [start,end) as owned by some other kind's
// scanner, excluding it from ParseGlobals.
func (p *Parser) markClaimed(start, end int) {
	p.claimed = append(p.claimed, [2]int{start, end})
}

// isClaimed reports whether [start,end) overlaps any previously
// claimed range.
func (p *Parser) isClaimed(start, end int) bool {
	for _, r := range p.claimed {
		if start < r[1] && end > r[0] {
			return true
		}
	}
	return false
}

// ParseAll runs every per-kind parser over body (the non-macro-line
// escrowed text) plus macroLines (the raw escrowed "#…" lines, or an
// out-of-tree tokenised macro list for the kernel area — §4.2) and
// returns every entity produced, in the order each scanner encountered
// it. Warnings accumulate on the Parser and are also returned directly
// for convenience.
func (p *Parser) ParseAll(body string, macroLines []string) ([]*entity.Entity, []Warning) {
	var out []*entity.Entity

	out = append(out, p.ParseMacros(macroLines)...)
	out = append(out, p.ParseTypedefs(body)...)
	out = append(out, p.ParseEnums(body)...)
	out = append(out, p.ParseStructs(body)...)
	out = append(out, p.ParseDeclarations(body)...)
	out = append(out, p.ParseFunctions(body)...)
	out = append(out, p.ParseGlobals(body)...)

	return out, p.warnings
}
