package cparse

import (
	"regexp"
	"strings"

	"github.com/modslice/modslice/internal/entity"
)

var enumHead = regexp.MustCompile(`\benum\b\s*([A-Za-z_]\w*)?\s*\{`)

// ParseEnums extracts one Enum entity per "enum [NAME] { CONSTANTS };"
// (§4.2). IDs include both the enum's own tag (if named) and every
// constant it introduces, since a reference to any constant pulls the
// whole enum into a slice.
func (p *Parser) ParseEnums(body string) []*entity.Entity {
	var out []*entity.Entity

	for _, m := range enumHead.FindAllStringSubmatchIndex(body, -1) {
		braceOpen := m[1] - 1
		braceClose := matchBrace(body, braceOpen)
		if braceClose == -1 {
			p.warn(warnf("unterminated enum body at byte %d, skipping", m[0]))
			continue
		}

		end := braceClose + 1
		if j := skipSpace(body, end); j < len(body) && body[j] == ';' {
			end = j + 1
		}
		stmt := body[m[0]:end]

		name := ""
		if m[2] != -1 {
			name = body[m[2]:m[3]]
		}
		if name == "" {
			name = p.anonName("enum")
		}

		ids := map[string]struct{}{name: {}}
		for _, c := range splitTopLevel(body[braceOpen+1:braceClose], ',') {
			if cname := enumConstantName(c); cname != "" {
				ids[cname] = struct{}{}
			}
		}
		tags := tokenize(stmt)

		if e := p.define(entity.Enum, name, stmt, ids, tags); e != nil {
			out = append(out, e)
			p.markClaimed(m[0], end)
		}
	}

	return out
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside
// (), [] or {} (e.g. "A = (1 << 2), B").
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		default:
			if s[i] == sep && depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

func enumConstantName(item string) string {
	item = strings.TrimSpace(item)
	if item == "" {
		return ""
	}
	if idx := strings.IndexByte(item, '='); idx != -1 {
		item = item[:idx]
	}
	m := identPattern.FindString(strings.TrimSpace(item))
	return m
}
