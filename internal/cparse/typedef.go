package cparse

import (
	"regexp"

	"github.com/modslice/modslice/internal/entity"
)

var (
	typedefKeyword = regexp.MustCompile(`\btypedef\b`)
	funcPtrName    = regexp.MustCompile(`\(\s*\*\s*([A-Za-z_]\w*)\s*\)\s*\(`)
	trailingName   = regexp.MustCompile(`([A-Za-z_]\w*)\s*(\[[^\]]*\])?\s*$`)
)

// ParseTypedefs extracts one Typedef entity per "typedef ... NAME;"
// statement (§4.2): the scalar form, the function-pointer form
// ("typedef RET (*NAME)(ARGS);") and the struct/union/enum-bodied form
// ("typedef struct { ... } NAME;"), the last requiring a brace balance
// before the terminating ';' can be trusted.
func (p *Parser) ParseTypedefs(body string) []*entity.Entity {
	var out []*entity.Entity

	for _, loc := range typedefKeyword.FindAllStringIndex(body, -1) {
		start := loc[0]
		end, ok := scanStatement(body, loc[1])
		if !ok {
			p.warn(warnf("unterminated typedef starting at byte %d, skipping", start))
			continue
		}
		stmt := body[start:end]

		name := typedefName(stmt)
		if name == "" {
			p.warn(warnf("could not determine typedef name in %q, skipping", truncate(stmt)))
			continue
		}

		ids := map[string]struct{}{name: {}}
		tags := tokenize(stmt)
		if e := p.define(entity.Typedef, name, stmt, ids, tags); e != nil {
			out = append(out, e)
			p.markClaimed(start, end)
		}
	}

	return out
}

// scanStatement advances from i (just past a leading keyword) to the
// end (exclusive) of the next top-level ';', balancing any {}/() that
// appear first so a brace-bodied struct/enum typedef isn't cut short
// by a semicolon inside it.
func scanStatement(body string, i int) (int, bool) {
	depth := 0
	for ; i < len(body); i++ {
		switch body[i] {
		case '{', '(':
			depth++
		case '}', ')':
			if depth > 0 {
				depth--
			}
		case ';':
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func typedefName(stmt string) string {
	stmt = trimTrailingSemicolon(stmt)
	if m := funcPtrName.FindAllStringSubmatch(stmt, -1); len(m) > 0 {
		return m[len(m)-1][1]
	}
	m := trailingName.FindStringSubmatch(stmt)
	if m == nil {
		return ""
	}
	return m[1]
}

func trimTrailingSemicolon(s string) string {
	for len(s) > 0 && (isSpace(s[len(s)-1]) || s[len(s)-1] == ';') {
		s = s[:len(s)-1]
	}
	return s
}

func truncate(s string) string {
	const max = 60
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
