package cparse

import (
	"regexp"

	"github.com/modslice/modslice/internal/entity"
)

var externPrefix = regexp.MustCompile(`\bextern\b\s*(?:inline\s+)?`)

// ParseDeclarations extracts one Declaration entity per "extern
// [inline] RET NAME(ARGS);" prototype (§4.2). A bare "extern int x;"
// (no parameter list) is not a prototype and is left unclaimed here —
// nothing in the meta-graph needs to depend on an external variable
// declaration by name alone, so it is harmless for it to fall through
// unclaimed.
func (p *Parser) ParseDeclarations(body string) []*entity.Entity {
	var out []*entity.Entity

	for _, loc := range externPrefix.FindAllStringIndex(body, -1) {
		nameEnd := loc[1]
		for nameEnd < len(body) && (isIdentByte(body[nameEnd]) || isSpace(body[nameEnd]) || body[nameEnd] == '*') {
			nameEnd++
		}
		if nameEnd >= len(body) || body[nameEnd] != '(' {
			continue
		}
		nameStart := nameEnd
		for nameStart > loc[1] && isIdentByte(body[nameStart-1]) {
			nameStart--
		}
		name := body[nameStart:nameEnd]
		if name == "" || isCKeyword(name) {
			continue
		}

		parenOpen := nameEnd
		parenClose := matchParen(body, parenOpen)
		if parenClose == -1 {
			p.warn(warnf("unterminated extern declaration %q, skipping", name))
			continue
		}

		end := skipSpace(body, parenClose+1)
		if end >= len(body) || body[end] != ';' {
			continue // not a prototype (likely a definition - handled by ParseFunctions)
		}
		end++

		stmt := body[loc[0]:end]
		ids := map[string]struct{}{name: {}}
		tags := tokenize(stmt)

		if e := p.define(entity.Declaration, name, stmt, ids, tags); e != nil {
			out = append(out, e)
			p.markClaimed(loc[0], end)
		}
	}

	return out
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
