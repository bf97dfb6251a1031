// Package escrow implements the text adapter of §4.1: it replaces
// comments, string/char literals, attribute annotations, and
// preprocessor macro lines with numbered placeholders so the regex
// entity parsers in internal/cparse never match inside one of them, and
// restores the original text verbatim at emission time.
//
// Each class gets its own escrow table and its own single-byte
// sentinel character (configurable — see internal/config), so a
// placeholder's class is unambiguous from its sentinel alone and
// restoration never has to guess which table an index belongs to.
package escrow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Class identifies one of the four escrowed text categories.
type Class int

const (
	Comment Class = iota
	String
	Attribute
	MacroLine
)

// Sentinels maps each class to the single-byte marker used to bound its
// placeholders. Must consist of bytes outside the C identifier
// alphabet ([A-Za-z0-9_]) so a placeholder can never be mistaken for an
// identifier by a downstream regex.
type Sentinels struct {
	Comment   string
	String    string
	Attribute string
	MacroLine string
}

// DefaultSentinels returns the sentinel set used when none is supplied
// by configuration.
func DefaultSentinels() Sentinels {
	return Sentinels{
		Comment:   "\x02",
		String:    "\x03",
		Attribute: "\x04",
		MacroLine: "\x05",
	}
}

// SentinelsFromStrings builds a Sentinels value from four configured
// sentinel strings, in (comment, string, attribute, macroLine) order.
// Kept free of any dependency on internal/config so escrow stays a leaf
// package; the slice command in internal/cmd does the field mapping.
func SentinelsFromStrings(comment, str, attribute, macroLine string) Sentinels {
	return Sentinels{
		Comment:   comment,
		String:    str,
		Attribute: attribute,
		MacroLine: macroLine,
	}
}

func (s Sentinels) forClass(c Class) string {
	switch c {
	case Comment:
		return s.Comment
	case String:
		return s.String
	case Attribute:
		return s.Attribute
	case MacroLine:
		return s.MacroLine
	default:
		return ""
	}
}

// AdaptedText is the output of Adapt: the text with every escrowed
// class's occurrences replaced with a placeholder, plus the escrow
// table needed to invert the substitution.
type AdaptedText struct {
	Body      string
	Sentinels Sentinels
	Escrows   map[Class][]string
}

var (
	// lineComment matches "// ..." up to (but not including) the next
	// newline; a backslash line continuation does not extend it.
	// blockComment matches "/* ... */" including
	// multi-line bodies.
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)

	// stringLiteral and charLiteral honor standard C backslash escaping
	// (an escaped quote does not end the literal).
	stringLiteral = regexp.MustCompile(`"(?:\\.|[^"\\])*"`)
	charLiteral   = regexp.MustCompile(`'(?:\\.|[^'\\])*'`)

	// attribute-style annotations §4.1 names explicitly.
	attrGNU          = regexp.MustCompile(`__attribute__\s*\(\(`)
	attrAcquires     = regexp.MustCompile(`__acquires\s*\(`)
	attrReleases     = regexp.MustCompile(`__releases\s*\(`)
	attrConstIdent   = regexp.MustCompile(`__attribute_const__\b`)
	attrConstFIdent  = regexp.MustCompile(`\bCONSTF\b`)

	// macroLine matches a "#..." directive line, honoring a trailing
	// backslash-newline as a continuation.
	macroLine = regexp.MustCompile(`(?m)^[ \t]*#(?:[^\n\\]|\\\r?\n)*`)
)

// Adapt escrows all four classes from text, in an order chosen so that
// comment/attribute matching never fires inside a string literal:
// strings and char literals first, then comments, then attributes,
// then whole macro-directive lines.
func Adapt(text string, sentinels Sentinels) *AdaptedText {
	at := &AdaptedText{
		Sentinels: sentinels,
		Escrows:   make(map[Class][]string),
	}

	body := text
	body = escrowPattern(body, String, sentinels, at, stringLiteral)
	body = escrowPattern(body, String, sentinels, at, charLiteral)
	body = escrowPattern(body, Comment, sentinels, at, blockComment)
	body = escrowPattern(body, Comment, sentinels, at, lineComment)
	body = escrowAttributes(body, sentinels, at)
	body = escrowPattern(body, MacroLine, sentinels, at, macroLine)

	at.Body = body
	return at
}

// escrowPattern replaces every match of pattern in body with a
// placeholder, appending the matched text to the class's escrow table.
func escrowPattern(body string, class Class, sentinels Sentinels, at *AdaptedText, pattern *regexp.Regexp) string {
	return pattern.ReplaceAllStringFunc(body, func(match string) string {
		return storeAndPlaceholder(class, sentinels, at, match)
	})
}

// escrowAttributes handles the four attribute forms of §4.1. The
// parenthesised forms (__attribute__((...)), __acquires(...),
// __releases(...)) need a balanced-paren scan since their argument
// lists may themselves contain parens or escrowed string placeholders;
// the bare-identifier forms are matched directly.
func escrowAttributes(body string, sentinels Sentinels, at *AdaptedText) string {
	body = escrowBalancedAttr(body, sentinels, at, attrGNU, 2) // consumes "((" -> need to close "))"
	body = escrowBalancedAttr(body, sentinels, at, attrAcquires, 1)
	body = escrowBalancedAttr(body, sentinels, at, attrReleases, 1)
	body = escrowPattern(body, Attribute, sentinels, at, attrConstIdent)
	body = escrowPattern(body, Attribute, sentinels, at, attrConstFIdent)
	return body
}

// escrowBalancedAttr finds each occurrence of prefix (which must end
// having consumed `openCount` unmatched '(' characters) and scans
// forward for the matching close, escrowing the whole span.
func escrowBalancedAttr(body string, sentinels Sentinels, at *AdaptedText, prefix *regexp.Regexp, openCount int) string {
	var sb strings.Builder
	pos := 0
	for {
		loc := prefix.FindStringIndex(body[pos:])
		if loc == nil {
			sb.WriteString(body[pos:])
			break
		}
		start := pos + loc[0]
		prefixEnd := pos + loc[1]

		sb.WriteString(body[pos:start])

		depth := openCount
		i := prefixEnd
		for i < len(body) && depth > 0 {
			switch body[i] {
			case '(':
				depth++
			case ')':
				depth--
			}
			i++
		}
		whole := body[start:i]
		sb.WriteString(storeAndPlaceholder(Attribute, sentinels, at, whole))
		pos = i
	}
	return sb.String()
}

func storeAndPlaceholder(class Class, sentinels Sentinels, at *AdaptedText, original string) string {
	idx := len(at.Escrows[class])
	at.Escrows[class] = append(at.Escrows[class], original)
	sentinel := sentinels.forClass(class)
	return sentinel + strconv.Itoa(idx) + sentinel
}

// placeholderPattern matches any placeholder written by storeAndPlaceholder
// for the given sentinel.
func placeholderPattern(sentinel string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`%s(\d+)%s`, regexp.QuoteMeta(sentinel), regexp.QuoteMeta(sentinel)))
}

// restoreOrder undoes escrowing in the reverse of the order Adapt
// applies it (String/Comment, then Attribute, then MacroLine): a class
// escrowed later can have captured a still-unresolved placeholder left
// by a class escrowed earlier (a macro line's trailing "// comment" is
// escrowed as a Comment placeholder first, then the whole line —
// placeholder included — is swallowed by MacroLine), so restoring it
// must re-inject the outer placeholder's text before the inner
// placeholder it contains gets its own pass.
var restoreOrder = []Class{MacroLine, Attribute, Comment, String}

// Restore inverts Adapt: every placeholder in body is replaced with its
// original escrowed text. Restore(Adapt(t, s).Body, Adapt(t,s)) == t for
// any class combination, by construction (§8 round-trip invariant).
func Restore(body string, at *AdaptedText) string {
	for _, class := range restoreOrder {
		table := at.Escrows[class]
		sentinel := at.Sentinels.forClass(class)
		if sentinel == "" {
			continue
		}
		pattern := placeholderPattern(sentinel)
		body = pattern.ReplaceAllStringFunc(body, func(match string) string {
			sub := pattern.FindStringSubmatch(match)
			idx, err := strconv.Atoi(sub[1])
			if err != nil || idx < 0 || idx >= len(table) {
				return match
			}
			return table[idx]
		})
	}
	return body
}
