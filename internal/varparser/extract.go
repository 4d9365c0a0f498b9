// =============================================================================
// VAR Sheet Mapper - Label Window Extraction
// =============================================================================
//
// This file contains the extraction primitive shared by every dialect parser.
// A value is located by finding a known label in the text and cutting the
// window that follows it.
//
// LABEL SURFACE FORMS (tried in this order):
//   1. "Label:"          flowing layout, "Merchant ID: 123456789012"
//   2. "| Label |"       table cell layout, "| DBA Name | CORNER DELI |"
//   3. "Label"           plain text, "Terminal ID V87654321"
//
// VALUE BOUNDARY (earliest wins):
//   - the next pipe delimiter
//   - the next known label written as a label ("Label:" or "Label |")
//   - the end of the line on which the value starts
//
// Matching is case-insensitive. A word boundary is required on each side of a
// label that starts or ends with a word character.
//
// =============================================================================

package varparser

import (
	"regexp"
	"strings"
	"unicode"
)

// =============================================================================
// LABEL
// =============================================================================

// label is a compiled field label.
type label struct {
	text  string
	lower string

	colon *regexp.Regexp // "Label:" or "Label;"
	cell  *regexp.Regexp // "| Label |"
	plain *regexp.Regexp // "Label"
	stop  *regexp.Regexp // "Label:" or "Label |", used as a value boundary
}

// newLabel compiles the surface forms of text.
//
// When leading is false the label may be glued to the preceding word, which
// is how Heartland sheets print values in front of their labels.
func newLabel(text string, leading bool) *label {
	core := labelCore(text, leading)
	return &label{
		text:  text,
		lower: strings.ToLower(text),
		colon: regexp.MustCompile(`(?i)` + core + `[ \t]*[:;]`),
		cell:  regexp.MustCompile(`(?i)\|[ \t]*` + core + `[ \t]*\|`),
		plain: regexp.MustCompile(`(?i)` + core),
		stop:  regexp.MustCompile(`(?i)` + core + `[ \t]*[:;|]`),
	}
}

// labelCore builds the regular expression for the label words themselves.
// Words may be separated by any run of whitespace, including none, since PDF
// text extraction is loose about spacing.
func labelCore(text string, leading bool) string {
	words := strings.Fields(text)
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	core := strings.Join(quoted, `\s*`)

	runes := []rune(text)
	if leading && len(runes) > 0 && isWordRune(runes[0]) {
		core = `\b` + core
	}
	if len(runes) > 0 && isWordRune(runes[len(runes)-1]) {
		core += `\b`
	}
	return core
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// =============================================================================
// EXTRACTOR
// =============================================================================

// extractor performs label-anchored window extraction over a fixed vocabulary.
// It is immutable after construction and safe for concurrent use.
type extractor struct {
	labels map[string]*label
	order  []*label
}

// newExtractor compiles every label in vocab.
func newExtractor(vocab []string, leading bool) *extractor {
	x := &extractor{labels: make(map[string]*label, len(vocab))}
	for _, text := range vocab {
		key := strings.ToLower(text)
		if _, ok := x.labels[key]; ok {
			continue
		}
		l := newLabel(text, leading)
		x.labels[key] = l
		x.order = append(x.order, l)
	}
	return x
}

// lookup returns the compiled label for text.
func (x *extractor) lookup(text string) *label {
	if l, ok := x.labels[strings.ToLower(text)]; ok {
		return l
	}
	return newLabel(text, true)
}

// first returns the first non-empty value among aliases, tried in order.
func (x *extractor) first(text string, aliases ...string) string {
	for _, alias := range aliases {
		if v := x.value(text, x.lookup(alias)); v != "" {
			return v
		}
	}
	return ""
}

// value extracts the value that follows l. It returns "" when the label is
// absent or every occurrence has an empty window.
func (x *extractor) value(text string, l *label) string {
	forms := []struct {
		re         *regexp.Regexp
		endsInPipe bool
		plain      bool
	}{
		{re: l.colon},
		{re: l.cell, endsInPipe: true},
		{re: l.plain, plain: true},
	}

	for _, form := range forms {
		for _, loc := range form.re.FindAllStringIndex(text, -1) {
			if form.plain && x.shadowed(text, loc, l) {
				continue
			}
			if v := x.window(text, loc[1], l, form.endsInPipe, form.plain); v != "" {
				return v
			}
		}
	}
	return ""
}

// shadowed reports whether a plain match of l at loc is really the start of
// a longer known label, e.g. "Chain" inside "Chain Number".
func (x *extractor) shadowed(text string, loc []int, l *label) bool {
	rest := text[loc[0]:]
	for _, other := range x.order {
		if len(other.lower) <= len(l.lower) || !strings.HasPrefix(other.lower, l.lower) {
			continue
		}
		if m := other.plain.FindStringIndex(rest); m != nil && m[0] == 0 {
			return true
		}
	}
	return false
}

// window cuts the value that starts at pos, right after a label match.
// A value may start on the following line only when the label was written
// as a label ("Label:" or "| Label |"); a plain match stays on its line.
func (x *extractor) window(text string, pos int, target *label, endsInPipe, sameLine bool) string {
	skip := skipSpace
	if sameLine {
		skip = skipBlanks
	}
	i := skipBlanks(text, pos)
	if i < len(text) && (text[i] == ':' || text[i] == ';') {
		i++
	}
	i = skip(text, i)
	if !endsInPipe && i < len(text) && text[i] == '|' {
		i = skip(text, i+1)
	}
	if i >= len(text) {
		return ""
	}

	rest := text[i:]
	end := len(rest)
	if p := strings.IndexByte(rest, '|'); p >= 0 && p < end {
		end = p
	}
	if n := strings.IndexByte(rest, '\n'); n >= 0 && n < end {
		end = n
	}
	for _, other := range x.order {
		if other == target || strings.Contains(target.lower, other.lower) {
			continue
		}
		if m := other.stop.FindStringIndex(rest[:end]); m != nil && m[0] < end {
			end = m[0]
		}
	}

	return cleanValue(rest[:end])
}

// =============================================================================
// TEXT HELPERS
// =============================================================================

// skipBlanks advances past spaces and tabs.
func skipBlanks(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

// skipSpace advances past any whitespace, including line breaks.
func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\r' || s[i] == '\n') {
		i++
	}
	return i
}

// cleanValue strips delimiter artifacts from an extracted window.
func cleanValue(s string) string {
	s = strings.Trim(s, " \t\r\n|")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, ":; ")
	return strings.TrimSpace(s)
}

// lastLine returns the text after the final line break in s.
func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// lastNonEmptyLine returns the last line of s that has visible content.
func lastNonEmptyLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := cleanValue(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
