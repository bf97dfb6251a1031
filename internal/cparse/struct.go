package cparse

import (
	"regexp"

	"github.com/modslice/modslice/internal/entity"
)

var structHead = regexp.MustCompile(`\b(struct|union)\b\s*([A-Za-z_]\w*)?\s*\{`)

// ParseStructs extracts one Struct entity per "struct|union [NAME] {
// ... };" (§4.2). Anonymous struct/unions (no NAME, typically the body
// of a typedef) are skipped here — ParseTypedefs claims that text as
// part of the enclosing typedef statement instead, so this scanner
// only fires for tag-named struct/unions, which is what other entities
// actually reference by name.
func (p *Parser) ParseStructs(body string) []*entity.Entity {
	var out []*entity.Entity

	for _, m := range structHead.FindAllStringSubmatchIndex(body, -1) {
		if m[4] == -1 {
			continue // anonymous, no tag to index on
		}
		name := body[m[4]:m[5]]

		braceOpen := m[1] - 1
		braceClose := matchBrace(body, braceOpen)
		if braceClose == -1 {
			p.warn(warnf("unterminated %s %q, skipping", body[m[2]:m[3]], name))
			continue
		}

		end := braceClose + 1
		if j := skipSpace(body, end); j < len(body) && body[j] == ';' {
			end = j + 1
		}
		stmt := body[m[0]:end]

		ids := map[string]struct{}{name: {}}
		tags := tokenize(stmt)

		if e := p.define(entity.Struct, name, stmt, ids, tags); e != nil {
			out = append(out, e)
			p.markClaimed(m[0], end)
		}
	}

	return out
}
