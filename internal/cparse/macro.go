package cparse

import (
	"regexp"

	"github.com/modslice/modslice/internal/entity"
)

// macroDefine matches one escrowed "#define" line. escrow.Adapt hands
// back the whole logical line (continuations already joined by the
// escrow pass), so this never has to deal with trailing backslashes.
var macroDefine = regexp.MustCompile(`^\s*#\s*define\s+([A-Za-z_]\w*)(\([^)]*\))?\s*(.*)$`)

// ParseMacros extracts a Macro entity from each line in lines that
// looks like a #define (§4.2 "Macro: #define NAME(args) body"). Lines
// that are some other directive (#include, #ifdef, #pragma, ...) are
// silently skipped — they never become entities, only gating for the
// slicer's output (§4.4 "preprocessor conditionals ... are retained
// verbatim, not evaluated").
func (p *Parser) ParseMacros(lines []string) []*entity.Entity {
	var out []*entity.Entity
	for _, line := range lines {
		m := macroDefine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		ids := map[string]struct{}{name: {}}
		tags := tokenize(line)
		if e := p.define(entity.Macro, name, line, ids, tags); e != nil {
			out = append(out, e)
		}
	}
	return out
}
