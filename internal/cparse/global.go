package cparse

import (
	"regexp"
	"strings"

	"github.com/modslice/modslice/internal/entity"
)

// globalDecl matches one file-scope declarator statement: optional
// storage/qualifier keywords, a type, a NAME, an optional array
// suffix, an optional initialiser, terminated by ';'. Deliberately
// loose — §1 Non-goals rules out real type checking, so this accepts
// anything declarator-shaped and relies on the caller's exclusions
// (extern, typedef, struct/union/enum, function prototype/definition)
// to keep it from double-claiming those.
var globalDecl = regexp.MustCompile(`(?m)^[ \t]*((?:static|const|volatile|unsigned|signed)\s+)*[A-Za-z_]\w*(\s+[A-Za-z_]\w*|\s*\*+\s*[A-Za-z_]\w*)+\s*(\[[^\]]*\])?\s*(=[^;]+)?;[ \t]*$`)

// ParseGlobals extracts one Global entity per file-scope variable
// declaration (§4.2). It runs after the other scanners so it can skip
// any byte range already claimed as a typedef, enum, struct/union,
// extern declaration or function — e.g. a struct member line like
// "int id;" is declarator-shaped too, but belongs to the struct that
// already claimed its enclosing braces.
func (p *Parser) ParseGlobals(body string) []*entity.Entity {
	var out []*entity.Entity

	for _, loc := range globalDecl.FindAllStringIndex(body, -1) {
		if p.isClaimed(loc[0], loc[1]) {
			continue
		}
		stmt := body[loc[0]:loc[1]]
		trimmed := strings.TrimSpace(stmt)
		if strings.HasPrefix(trimmed, "extern") ||
			strings.HasPrefix(trimmed, "typedef") ||
			strings.Contains(trimmed, "(") {
			continue
		}

		name := globalName(trimmed)
		if name == "" || isCKeyword(name) {
			continue
		}

		ids := map[string]struct{}{name: {}}
		tags := tokenize(trimmed)
		if e := p.define(entity.Global, name, trimmed, ids, tags); e != nil {
			out = append(out, e)
			p.markClaimed(loc[0], loc[1])
		}
	}

	return out
}

func globalName(stmt string) string {
	decl := stmt
	if idx := strings.IndexByte(decl, '='); idx != -1 {
		decl = decl[:idx]
	}
	decl = trimTrailingSemicolon(decl)
	if idx := strings.IndexByte(decl, '['); idx != -1 {
		decl = decl[:idx]
	}
	m := trailingName.FindStringSubmatch(strings.TrimRight(decl, " \t"))
	if m == nil {
		return ""
	}
	return m[1]
}
