package varparser

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// DefaultNameRejections are the boilerplate phrases that can sit where a
// Heartland merchant name is expected. They are evaluated in order.
var DefaultNameRejections = []string{
	`(?i)^CURBSTONE\b`,
	`(?i)^HEARTLAND\b`,
	`(?i)^MERCHANT\b`,
	`(?i)^TERMINAL\b`,
	`(?i)^PAGE\s*\d+`,
	`(?i)VAR\s*SHEET`,
	`(?i)^(DBA|MID|TID|MCC)\b`,
	`(?i)^(ADDRESS|CITY|STATE|ZIP|PHONE)\b`,
	`(?i)^CARD\s+TYPES?\b`,
	`(?i)^(PARAMETER|PROFILE|SETUP)\s+SHEET\b`,
	`(?i)^GLOBAL\s+PAYMENTS\b`,
	`(?i)^(DOWNLOAD|EQUIPMENT|APPLICATION)\s+(INFO|INFORMATION|DETAILS)\b`,
}

const maxNameLength = 199

// Rejection is a single predicate that disqualifies a merchant name candidate.
type Rejection struct {
	Pattern string
	re      *regexp.Regexp
}

// Match reports whether the candidate should be rejected.
func (r Rejection) Match(candidate string) bool {
	return r.re.MatchString(candidate)
}

// NameFilter decides whether a captured span is a plausible merchant name.
type NameFilter struct {
	rejections []Rejection
}

// NewNameFilter compiles patterns in order. A nil slice selects
// DefaultNameRejections; an empty non-nil slice disables rejections.
func NewNameFilter(patterns []string) (*NameFilter, error) {
	if patterns == nil {
		patterns = DefaultNameRejections
	}
	f := &NameFilter{rejections: make([]Rejection, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid name rejection %q: %w", p, err)
		}
		f.rejections = append(f.rejections, Rejection{Pattern: p, re: re})
	}
	return f, nil
}

// Accept reports whether candidate passes every rule: it starts with an
// uppercase letter, is 1 to 199 characters long and matches no rejection.
func (f *NameFilter) Accept(candidate string) bool {
	n := utf8.RuneCountInString(candidate)
	if n == 0 || n > maxNameLength {
		return false
	}
	first, _ := utf8.DecodeRuneInString(candidate)
	if !unicode.IsUpper(first) {
		return false
	}
	for _, r := range f.rejections {
		if r.Match(candidate) {
			return false
		}
	}
	return true
}

// Rejections returns the compiled predicates in evaluation order.
func (f *NameFilter) Rejections() []Rejection {
	out := make([]Rejection, len(f.rejections))
	copy(out, f.rejections)
	return out
}
