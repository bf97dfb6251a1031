package cparse

import (
	"regexp"

	"github.com/modslice/modslice/internal/entity"
)

var funcHead = regexp.MustCompile(`([A-Za-z_]\w*)\s*\(`)

// ParseFunctions extracts one Function entity per "RET NAME(ARGS)
// [attribute junk] { BODY }" (§4.2). A NAME that matches a C keyword
// (if, for, switch, ...) is discarded with a warning rather than
// accepted as a function definition.
func (p *Parser) ParseFunctions(body string) []*entity.Entity {
	var out []*entity.Entity
	claimed := make([]bool, len(body)+1)

	for _, m := range funcHead.FindAllStringSubmatchIndex(body, -1) {
		nameStart, nameEnd := m[2], m[3]
		if claimed[nameStart] {
			continue
		}
		name := body[nameStart:nameEnd]

		parenOpen := nameEnd
		for parenOpen < len(body) && isSpace(body[parenOpen]) {
			parenOpen++
		}
		if parenOpen >= len(body) || body[parenOpen] != '(' {
			continue
		}
		parenClose := matchParen(body, parenOpen)
		if parenClose == -1 {
			continue
		}

		braceOpen := skipAttrJunk(body, parenClose+1)
		if braceOpen >= len(body) || body[braceOpen] != '{' {
			continue // prototype, not a definition
		}

		if isCKeyword(name) {
			p.warn(warnf("discarding keyword %q matched as a function name near byte %d", name, nameStart))
			continue
		}

		braceClose := matchBrace(body, braceOpen)
		if braceClose == -1 {
			p.warn(warnf("unterminated function body for %q, skipping", name))
			continue
		}

		start := statementStart(body, nameStart)
		stmt := body[start : braceClose+1]

		ids := map[string]struct{}{name: {}}
		tags := tokenize(stmt)

		if e := p.define(entity.Function, name, stmt, ids, tags); e != nil {
			out = append(out, e)
			p.markClaimed(start, braceClose+1)
			for i := start; i <= braceClose; i++ {
				claimed[i] = true
			}
		}
	}

	return out
}

// skipAttrJunk advances past whitespace and escrowed-placeholder runs
// (an escrowed GNU __attribute__/__acquires__/__releases__ span
// between a function's argument list and its body). Placeholders are
// shaped <sentinel><digits><sentinel> where sentinel is a single byte
// outside the C identifier alphabet (internal/escrow); cparse only
// needs to recognise and skip the shape, not decode it.
func skipAttrJunk(body string, i int) int {
	for {
		i = skipSpace(body, i)
		if i < len(body) && isPlaceholderSentinel(body[i]) {
			sentinel := body[i]
			j := i + 1
			for j < len(body) && body[j] >= '0' && body[j] <= '9' {
				j++
			}
			if j < len(body) && j > i+1 && body[j] == sentinel {
				i = j + 1
				continue
			}
		}
		return i
	}
}

func isPlaceholderSentinel(c byte) bool {
	return c >= 0x01 && c <= 0x08
}
