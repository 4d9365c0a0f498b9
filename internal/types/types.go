// =============================================================================
// VAR Sheet Mapper - Shared Types
// =============================================================================
//
// This package contains the types shared by the parser, mapper, validator and
// output writers. Keeping them here avoids import cycles between:
//   - varparser  (produces ParsedRecord)
//   - mapper     (consumes ParsedRecord, produces FieldMap)
//   - validation (consumes FieldMap)
//   - output     (serializes FieldMap and ParsedRecord)
//
// =============================================================================

package types

import (
	"fmt"
	"strings"

	"github.com/tiendc/go-deepcopy"
)

// =============================================================================
// DIALECT
// =============================================================================

// Dialect identifies the layout convention of a VAR sheet.
type Dialect string

const (
	DialectTSYS      Dialect = "TSYS"
	DialectPropelr   Dialect = "Propelr"
	DialectHeartland Dialect = "Heartland"
	DialectUR        Dialect = "UR"
	DialectUnknown   Dialect = "Unknown"
)

// Dialects lists the dialects that have a dedicated parser, in detection order.
var Dialects = []Dialect{DialectPropelr, DialectHeartland, DialectUR, DialectTSYS}

// String implements fmt.Stringer.
func (d Dialect) String() string {
	return string(d)
}

// IsKnown reports whether d has a dedicated parser.
func (d Dialect) IsKnown() bool {
	switch d {
	case DialectTSYS, DialectPropelr, DialectHeartland, DialectUR:
		return true
	}
	return false
}

// ParseDialect converts a user-supplied tag into a Dialect.
// Matching is case-insensitive. An unrecognized tag returns an error.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tsys":
		return DialectTSYS, nil
	case "propelr":
		return DialectPropelr, nil
	case "heartland":
		return DialectHeartland, nil
	case "ur":
		return DialectUR, nil
	case "unknown", "generic":
		return DialectUnknown, nil
	}
	return "", fmt.Errorf("unknown dialect %q", s)
}

// =============================================================================
// PARSED RECORD
// =============================================================================

// Merchant attribute keys.
const (
	MerchantID      = "merchantId"
	MerchantDBAName = "dbaName"
	MerchantAddress = "address"
	MerchantCity    = "city"
	MerchantState   = "state"
	MerchantZip     = "zipcode"
	MerchantPhone   = "phone"
)

// Terminal attribute keys.
const (
	TerminalNumber      = "terminalNumber"
	TerminalID          = "terminalId"
	TerminalStoreNumber = "storeNumber"
	TerminalChainNumber = "chainNumber"
	TerminalAgentNumber = "agentNumber"
	TerminalBinNumber   = "binNumber"
	TerminalSICCode     = "sicCode"
	TerminalTimeZoneInd = "timeZoneInd"
)

// UR attribute keys.
const (
	URAuthenticationCode     = "authenticationCode"
	URSharingGroup           = "sharingGroup"
	URABANumber              = "abaNumber"
	URSettlementAgent        = "settlementAgent"
	URReimbursementAttribute = "reimbursementAttribute"
)

// ParsedRecord is the structured output of a dialect parser.
//
// A record is created fresh for every parse call and is not mutated after it
// is returned. Empty values are omitted from the maps, except sicCode which is
// always present in Terminal for the dialect parsers.
type ParsedRecord struct {
	// Format is the dialect that produced the record.
	Format Dialect `json:"format"`

	// Merchant holds merchant identity and address attributes.
	Merchant map[string]string `json:"merchant"`

	// Terminal holds terminal identifiers and the category code.
	Terminal map[string]string `json:"terminal"`

	// CardTypes maps a card network name to presence or identifier info.
	CardTypes map[string]string `json:"cardTypes"`

	// Debit holds debit network data. Only populated when the sheet carries
	// a debit network summary.
	Debit map[string]string `json:"debit"`

	// UR holds the UR-only debit routing fields. Nil for other dialects.
	UR map[string]string `json:"ur,omitempty"`

	// RawText is the untouched input, kept by the generic fallback only.
	RawText string `json:"rawText,omitempty"`
}

// NewParsedRecord returns a record with all maps allocated.
func NewParsedRecord(format Dialect) *ParsedRecord {
	return &ParsedRecord{
		Format:    format,
		Merchant:  make(map[string]string),
		Terminal:  make(map[string]string),
		CardTypes: make(map[string]string),
		Debit:     make(map[string]string),
	}
}

// Clone returns a deep copy of the record.
func (r *ParsedRecord) Clone() (*ParsedRecord, error) {
	if r == nil {
		return nil, nil
	}
	var out ParsedRecord
	if err := deepcopy.Copy(&out, *r); err != nil {
		return nil, fmt.Errorf("failed to copy parsed record: %w", err)
	}
	return &out, nil
}

// IsEmpty reports whether no structured field was extracted.
func (r *ParsedRecord) IsEmpty() bool {
	for _, m := range []map[string]string{r.Merchant, r.Terminal, r.CardTypes, r.Debit, r.UR} {
		for _, v := range m {
			if v != "" {
				return false
			}
		}
	}
	return true
}

// FieldCount returns the number of non-empty structured values.
func (r *ParsedRecord) FieldCount() int {
	n := 0
	for _, m := range []map[string]string{r.Merchant, r.Terminal, r.CardTypes, r.Debit, r.UR} {
		for _, v := range m {
			if v != "" {
				n++
			}
		}
	}
	return n
}
