package varparser

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

// anchor is a dialect-identifying phrase.
type anchor struct {
	dialect types.Dialect
	phrases []*regexp.Regexp
}

// anchors is evaluated top to bottom; the first dialect with any matching
// phrase wins. Propelr and Heartland sheets are printed on TSYS forms and
// mention TSYS, so the generic TSYS anchors come last.
var anchors = []anchor{
	{dialect: types.DialectPropelr, phrases: phrases("propelr", "v number", "visa mcc")},
	{dialect: types.DialectHeartland, phrases: phrases("heartland", "curbstone card")},
	{dialect: types.DialectUR, phrases: phrases("ur var sheet", "reimbursement attribute", "settlement agent")},
	{dialect: types.DialectTSYS, phrases: phrases("tsys", "total system services", "time zone ind", "vital")},
}

func phrases(list ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(list))
	for i, p := range list {
		out[i] = regexp.MustCompile(`(?i)\b` + labelCore(p, false))
	}
	return out
}

// Detect returns the dialect of text, or DialectUnknown when no anchor
// phrase is present. Blank text is always Unknown.
func Detect(text string) types.Dialect {
	if strings.TrimSpace(text) == "" {
		return types.DialectUnknown
	}
	for _, a := range anchors {
		for _, re := range a.phrases {
			if re.MatchString(text) {
				return a.dialect
			}
		}
	}
	return types.DialectUnknown
}

// Anchors returns the anchor phrases of d, for diagnostics.
func Anchors(d types.Dialect) []string {
	for _, a := range anchors {
		if a.dialect != d {
			continue
		}
		out := make([]string, len(a.phrases))
		for i, re := range a.phrases {
			out[i] = re.String()
		}
		return out
	}
	return nil
}
