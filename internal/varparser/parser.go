// =============================================================================
// VAR Sheet Mapper - Dialect Parsers
// =============================================================================
//
// This package turns plain text extracted from a VAR sheet PDF into a
// types.ParsedRecord. There is one parser per dialect plus a generic fallback:
//
//   TSYS       labels before values, forward window extraction
//   Propelr    forward extraction, "V Number" and "VISA MCC" vocabulary
//   Heartland  values glued in front of their labels, backward extraction
//   UR         pipe tables plus free-text regexes for the UR debit fields
//   Generic    keeps the raw text, extracts nothing
//
// Parsing never fails on content. A missing label yields an empty value. The
// only errors are precondition violations such as a nil reader or an
// unsupported dialect tag.
//
// CONCURRENCY:
//   Parsers hold only compiled, read-only state and may be shared between
//   goroutines.
//
// =============================================================================

package varparser

import (
	"io"

	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

// Parser extracts a ParsedRecord from VAR sheet text.
type Parser interface {
	// Dialect returns the dialect this parser handles.
	Dialect() types.Dialect

	// Parse extracts every known field from text. It never fails; fields
	// that cannot be found are left empty.
	Parse(text string) *types.ParsedRecord
}

// Options configures parser construction.
type Options struct {
	// NameRejections are the ordered regular expressions that disqualify a
	// Heartland merchant name candidate. Nil selects DefaultNameRejections.
	NameRejections []string
}

// New returns the parser for d. DialectUnknown yields the generic parser.
func New(d types.Dialect, opts Options) (Parser, error) {
	switch d {
	case types.DialectTSYS:
		return newTSYSParser(), nil
	case types.DialectPropelr:
		return newPropelrParser(), nil
	case types.DialectHeartland:
		filter, err := NewNameFilter(opts.NameRejections)
		if err != nil {
			return nil, apperrors.NewConfigInvalidError("heartland name rejections", err)
		}
		return newHeartlandParser(filter), nil
	case types.DialectUR:
		return newURParser(), nil
	case types.DialectUnknown:
		return genericParser{}, nil
	}
	return nil, apperrors.NewInvalidDialectError(string(d))
}

// Registry holds one parser per dialect.
type Registry struct {
	parsers map[types.Dialect]Parser
}

// NewRegistry builds a parser for every dialect, including the generic one.
func NewRegistry(opts Options) (*Registry, error) {
	r := &Registry{parsers: make(map[types.Dialect]Parser)}
	for _, d := range append([]types.Dialect{types.DialectUnknown}, types.Dialects...) {
		p, err := New(d, opts)
		if err != nil {
			return nil, err
		}
		r.parsers[d] = p
	}
	return r, nil
}

// Parse parses text with the parser for d. An empty d runs Detect first.
func (r *Registry) Parse(text string, d types.Dialect) (*types.ParsedRecord, error) {
	if d == "" {
		d = Detect(text)
	}
	p, ok := r.parsers[d]
	if !ok {
		return nil, apperrors.NewInvalidDialectError(string(d))
	}
	return p.Parse(text), nil
}

// ParseReader reads all of rd and parses it like Parse.
func (r *Registry) ParseReader(rd io.Reader, d types.Dialect) (*types.ParsedRecord, error) {
	if rd == nil {
		return nil, apperrors.NewInvalidArgumentError("reader cannot be nil")
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, apperrors.NewFileReadError("reader", err)
	}
	return r.Parse(string(data), d)
}

var defaultRegistry = func() *Registry {
	r, err := NewRegistry(Options{})
	if err != nil {
		panic(err)
	}
	return r
}()

// Parse parses text with the default parsers. An empty d runs Detect first.
func Parse(text string, d types.Dialect) (*types.ParsedRecord, error) {
	return defaultRegistry.Parse(text, d)
}

// ParseReader reads all of r and parses it with the default parsers.
func ParseReader(r io.Reader, d types.Dialect) (*types.ParsedRecord, error) {
	return defaultRegistry.ParseReader(r, d)
}

// =============================================================================
// FIELD TABLES
// =============================================================================

// section selects the ParsedRecord map a field is written to.
type section int

const (
	sectionMerchant section = iota
	sectionTerminal
)

// fieldSpec binds a record key to the labels that may carry its value.
type fieldSpec struct {
	section section
	key     string
	aliases []string
}

func target(rec *types.ParsedRecord, s section) map[string]string {
	if s == sectionTerminal {
		return rec.Terminal
	}
	return rec.Merchant
}

// joinFields concatenates field tables into a new slice.
func joinFields(groups ...[]fieldSpec) []fieldSpec {
	var out []fieldSpec
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// vocabulary returns every alias in fields followed by extra.
func vocabulary(fields []fieldSpec, extra ...[]string) []string {
	var out []string
	for _, f := range fields {
		out = append(out, f.aliases...)
	}
	for _, e := range extra {
		out = append(out, e...)
	}
	return out
}

// parseForward fills rec from fields using forward window extraction.
func parseForward(rec *types.ParsedRecord, text string, x *extractor, fields []fieldSpec) {
	for _, f := range fields {
		if v := x.first(text, f.aliases...); v != "" {
			target(rec, f.section)[f.key] = v
		}
	}
}

// finish applies the invariants shared by every dialect parser.
func finish(rec *types.ParsedRecord) *types.ParsedRecord {
	if _, ok := rec.Terminal[types.TerminalSICCode]; !ok {
		rec.Terminal[types.TerminalSICCode] = ""
	}
	return rec
}

// =============================================================================
// GENERIC
// =============================================================================

// genericParser handles text whose dialect is unknown.
type genericParser struct{}

func (genericParser) Dialect() types.Dialect { return types.DialectUnknown }

// Parse keeps the raw text and leaves every structured map empty.
func (genericParser) Parse(text string) *types.ParsedRecord {
	rec := types.NewParsedRecord(types.DialectUnknown)
	rec.RawText = text
	return rec
}
