package varparser

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

// =============================================================================
// HEARTLAND LAYOUT
// =============================================================================
//
// Heartland (Curbstone) sheets print most values directly in front of their
// labels with no separator:
//
//   CURBSTONE CARD
//   WEATHERTECHMerchant Name
//   000111222MID
//
// Each field is read backward: every known label is located, the positions
// are sorted, and a field's value is the text between the end of the previous
// label and the start of its own, restricted to the label's line. Lines that
// use the "Label: value" convention fall back to forward extraction.
//
// Labels are matched with their printed capitalisation, which keeps an
// uppercase value such as "CITY DINER" from being mistaken for a label.
// All-caps labels (MID, BIN, TID, MCC) only glue to digits, so a match
// preceded by a letter is part of a word like "PYRAMID" and is skipped.
//
// =============================================================================

// heartlandMarker bounds the merchant name window from above.
const heartlandMarker = "CURBSTONE CARD"

var heartlandNameLabels = []string{"Merchant Name", "DBA Name"}

var heartlandFields = []fieldSpec{
	{sectionMerchant, types.MerchantID, []string{"MID", "Merchant ID", "Merchant Number"}},
	{sectionMerchant, types.MerchantAddress, []string{"Address"}},
	{sectionMerchant, types.MerchantCity, []string{"City"}},
	{sectionMerchant, types.MerchantState, []string{"State"}},
	{sectionMerchant, types.MerchantZip, []string{"Zip Code", "Zip"}},
	{sectionMerchant, types.MerchantPhone, []string{"Phone"}},
	{sectionTerminal, types.TerminalNumber, []string{"Terminal Number"}},
	{sectionTerminal, types.TerminalID, []string{"Terminal ID", "TID"}},
	{sectionTerminal, types.TerminalStoreNumber, []string{"Store Number"}},
	{sectionTerminal, types.TerminalChainNumber, []string{"Chain Number"}},
	{sectionTerminal, types.TerminalAgentNumber, []string{"Agent Number"}},
	{sectionTerminal, types.TerminalBinNumber, []string{"BIN"}},
	{sectionTerminal, types.TerminalSICCode, []string{"MCC", "SIC Code"}},
	{sectionTerminal, types.TerminalTimeZoneInd, []string{"Time Zone"}},
}

// position is one label occurrence in the text.
type position struct {
	label string
	start int
	end   int
}

// heartlandParser reads Heartland sheets.
type heartlandParser struct {
	// forward is the case-insensitive extractor used for "Label: value" lines.
	forward *extractor

	// glued holds case-sensitive label patterns without a leading word
	// boundary, so "WEATHERTECHMerchant Name" still finds its label.
	glued map[string]*regexp.Regexp

	marker *regexp.Regexp
	names  *NameFilter
}

func newHeartlandParser(names *NameFilter) *heartlandParser {
	vocab := vocabulary(heartlandFields, heartlandNameLabels, networkLabels())
	p := &heartlandParser{
		forward: newExtractor(vocab, true),
		glued:   make(map[string]*regexp.Regexp, len(vocab)),
		marker:  regexp.MustCompile(`(?i)` + labelCore(heartlandMarker, true)),
		names:   names,
	}
	for _, l := range vocab {
		p.glued[l] = regexp.MustCompile(labelCore(l, false))
	}
	p.glued[heartlandMarker] = p.marker
	return p
}

func (p *heartlandParser) Dialect() types.Dialect { return types.DialectHeartland }

func (p *heartlandParser) Parse(text string) *types.ParsedRecord {
	rec := types.NewParsedRecord(types.DialectHeartland)
	positions := p.positions(text)

	for _, f := range heartlandFields {
		if v := p.field(text, positions, f.aliases); v != "" {
			target(rec, f.section)[f.key] = v
		}
	}
	if name := p.merchantName(text, positions); name != "" {
		rec.Merchant[types.MerchantDBAName] = name
	}

	parseNetworks(rec, text, p.forward)
	return finish(rec)
}

// positions returns every label occurrence sorted by start. When two
// occurrences overlap, the one that starts first wins, and on a tie the
// longer label wins.
func (p *heartlandParser) positions(text string) []position {
	var all []position
	for name, re := range p.glued {
		acronym := isAcronym(name)
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if acronym && followsLetter(text, loc[0]) {
				continue
			}
			all = append(all, position{label: name, start: loc[0], end: loc[1]})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		if all[i].end != all[j].end {
			return all[i].end > all[j].end
		}
		return all[i].label < all[j].label
	})

	out := all[:0]
	lastEnd := -1
	for _, pos := range all {
		if pos.start < lastEnd {
			continue
		}
		out = append(out, pos)
		lastEnd = pos.end
	}
	return out
}

// isAcronym reports whether label is written entirely in capitals.
func isAcronym(label string) bool {
	return strings.ToUpper(label) == label && strings.ToLower(label) != label
}

// followsLetter reports whether the rune before text[i] is a letter.
func followsLetter(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return unicode.IsLetter(r)
}

// find returns the index of the first occurrence of any alias, trying the
// aliases in order, or -1.
func find(positions []position, aliases []string) int {
	for _, alias := range aliases {
		for i, pos := range positions {
			if pos.label == alias {
				return i
			}
		}
	}
	return -1
}

// before returns the raw text between the previous label and positions[i].
func before(text string, positions []position, i int) string {
	from := 0
	if i > 0 {
		from = positions[i-1].end
	}
	return text[from:positions[i].start]
}

// field reads one value backward, falling back to forward extraction.
func (p *heartlandParser) field(text string, positions []position, aliases []string) string {
	if i := find(positions, aliases); i >= 0 {
		if v := backwardValue(before(text, positions, i)); v != "" {
			return v
		}
	}
	return p.forward.first(text, aliases...)
}

// backwardValue cleans the part of span that sits on the label's own line.
// A span that opens with a separator is the tail of a "Label: value" pair
// belonging to the previous label, so it is not a glued value.
func backwardValue(span string) string {
	line := strings.TrimLeft(lastLine(span), " \t")
	if line == "" || strings.ContainsAny(line[:1], ":;|") {
		return ""
	}
	return cleanValue(line)
}

// merchantName tries each extraction method in order and returns the first
// candidate accepted by the name filter.
func (p *heartlandParser) merchantName(text string, positions []position) string {
	i := find(positions, heartlandNameLabels)

	if i >= 0 {
		// Glued to the label on the same line.
		if v := backwardValue(before(text, positions, i)); p.names.Accept(v) {
			return v
		}

		// Last non-empty line between the marker, or the previous label,
		// and the name label.
		from := 0
		if loc := p.marker.FindStringIndex(text[:positions[i].start]); loc != nil {
			from = loc[1]
		}
		if i > 0 && positions[i-1].end > from {
			from = positions[i-1].end
		}
		if v := lastNonEmptyLine(text[from:positions[i].start]); p.names.Accept(v) {
			return v
		}
	}

	// "Merchant Name: value" written the forward way.
	if v := p.forward.first(text, heartlandNameLabels...); p.names.Accept(v) {
		return v
	}
	return ""
}
