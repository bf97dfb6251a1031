package cparse

import "regexp"

var identPattern = regexp.MustCompile(`[A-Za-z_]\w*`)

// tokenize returns the set of identifier-shaped tokens in text, used to
// populate an entity's TagTokens (§3).
func tokenize(text string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, m := range identPattern.FindAllString(text, -1) {
		out[m] = struct{}{}
	}
	return out
}

// cKeywords holds the C keywords a bare "NAME(" match must be checked
// against before it is accepted as a function definition or call site,
// so e.g. "if (x) {" is never mistaken for a function named if (§4.2
// "discard keyword false-positives, with a warning").
var cKeywords = map[string]struct{}{
	"if": {}, "else": {}, "for": {}, "while": {}, "do": {}, "switch": {},
	"case": {}, "default": {}, "return": {}, "goto": {}, "break": {},
	"continue": {}, "sizeof": {}, "typedef": {}, "struct": {}, "union": {},
	"enum": {}, "static": {}, "extern": {}, "const": {}, "volatile": {},
	"inline": {}, "register": {}, "auto": {}, "void": {}, "signed": {},
	"unsigned": {}, "_Generic": {}, "_Static_assert": {},
}

func isCKeyword(name string) bool {
	_, ok := cKeywords[name]
	return ok
}
