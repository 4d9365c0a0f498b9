// =============================================================================
// VAR Sheet Mapper - Validation Engine
// =============================================================================
//
// This module checks a mapped canonical field map for the fields the
// provisioning system needs before a terminal can be boarded.
//
// CHECK SEQUENCE (fixed; every check runs, nothing short-circuits):
//   1. TSYS:      TSYS_Merchant_ID, TSYS_Terminal_ID, TSYS_Terminal_Number
//                 must be set (one error each)
//   2. Heartland: Merchant_ID or TSYS_Merchant_ID, Merchant_Name and
//                 TSYS_Terminal_ID must be set (one error each)
//   3. UR:        Merchant_Name must be set
//   4. Always:    warning when Merchant_Name is empty
//   5. TSYS:      warning when TSYS_Terminal_ID still starts with V
//   6. Always:    when TSYS_Debit_Sharing_Group is set, one warning for each
//                 empty ABA, settlement agent and reimbursement attribute
//
// Optional format checks (Options.CheckFormats) run after the sequence and
// only ever add warnings.
//
// ERROR HANDLING:
//   - Issues are collected, never returned as Go errors
//   - IsValid is false only when at least one error was recorded
//   - Warnings never affect IsValid
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names recorded on each issue.
const (
	RuleRequired          = "required"
	RuleRecommended       = "recommended"
	RuleTerminalTransform = "terminal_id_transform"
	RuleDebitComplete     = "debit_complete"
	RuleFormat            = "format"
)

// =============================================================================
// VALIDATION ISSUE
// =============================================================================

// Issue is a single validation finding.
type Issue struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string `json:"severity"`

	// Field is the canonical field the issue is about.
	Field string `json:"field"`

	// Rule is the check that produced the issue.
	Rule string `json:"rule"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// String renders the issue for logs.
func (i *Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(i.Severity), i.Field, i.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains the results of validation.
type Result struct {
	// IsValid is true if no errors were recorded.
	IsValid bool `json:"isValid"`

	// Errors holds the error messages in check order.
	Errors []string `json:"errors"`

	// Warnings holds the warning messages in check order.
	Warnings []string `json:"warnings"`

	// Issues holds every finding, errors and warnings interleaved in check
	// order.
	Issues []*Issue `json:"issues"`
}

func newResult() *Result {
	return &Result{
		IsValid:  true,
		Errors:   []string{},
		Warnings: []string{},
		Issues:   []*Issue{},
	}
}

func (r *Result) add(severity, field, rule, message string) {
	r.Issues = append(r.Issues, &Issue{Severity: severity, Field: field, Rule: rule, Message: message})
	if severity == SeverityError {
		r.Errors = append(r.Errors, message)
		r.IsValid = false
		return
	}
	r.Warnings = append(r.Warnings, message)
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Options contains options for validation.
type Options struct {
	// CheckFormats adds warnings for values that are present but do not look
	// like the numbers the provisioning system expects.
	// Default: false
	CheckFormats bool
}

// Validator validates canonical field maps. It is safe for concurrent use.
type Validator struct {
	options Options
}

// NewValidator creates a Validator with the given options.
func NewValidator(options Options) *Validator {
	return &Validator{options: options}
}

// Validate runs the check sequence with default options.
func Validate(fields types.FieldMap, d types.Dialect) *Result {
	return NewValidator(Options{}).Validate(fields, d)
}

// Validate runs the fixed check sequence against fields for dialect d.
func (v *Validator) Validate(fields types.FieldMap, d types.Dialect) *Result {
	result := newResult()
	empty := func(key string) bool { return strings.TrimSpace(fields[key]) == "" }

	// 1. TSYS required fields.
	if d == types.DialectTSYS {
		for _, key := range []string{types.FieldTSYSMerchantID, types.FieldTSYSTerminalID, types.FieldTSYSTerminalNumber} {
			if empty(key) {
				result.add(SeverityError, key, RuleRequired, fmt.Sprintf("%s is required for TSYS", key))
			}
		}
	}

	// 2. Heartland required fields.
	if d == types.DialectHeartland {
		if empty(types.FieldMerchantID) && empty(types.FieldTSYSMerchantID) {
			result.add(SeverityError, types.FieldMerchantID, RuleRequired,
				fmt.Sprintf("%s or %s is required for Heartland", types.FieldMerchantID, types.FieldTSYSMerchantID))
		}
		if empty(types.FieldMerchantName) {
			result.add(SeverityError, types.FieldMerchantName, RuleRequired,
				fmt.Sprintf("%s is required for Heartland", types.FieldMerchantName))
		}
		if empty(types.FieldTSYSTerminalID) {
			result.add(SeverityError, types.FieldTSYSTerminalID, RuleRequired,
				fmt.Sprintf("%s is required for Heartland", types.FieldTSYSTerminalID))
		}
	}

	// 3. UR required fields.
	if d == types.DialectUR && empty(types.FieldMerchantName) {
		result.add(SeverityError, types.FieldMerchantName, RuleRequired,
			fmt.Sprintf("%s is required for UR", types.FieldMerchantName))
	}

	// 4. Merchant name, for every dialect.
	if empty(types.FieldMerchantName) {
		result.add(SeverityWarning, types.FieldMerchantName, RuleRecommended,
			fmt.Sprintf("%s is empty", types.FieldMerchantName))
	}

	// 5. The mapper should already have replaced a leading V.
	if d == types.DialectTSYS && strings.HasPrefix(fields[types.FieldTSYSTerminalID], "V") {
		result.add(SeverityWarning, types.FieldTSYSTerminalID, RuleTerminalTransform,
			fmt.Sprintf("%s %q starts with V; the leading V should be replaced with 7", types.FieldTSYSTerminalID, fields[types.FieldTSYSTerminalID]))
	}

	// 6. A sharing group needs the rest of the debit network fields.
	if !empty(types.FieldTSYSDebitSharingGroup) {
		for _, key := range []string{types.FieldTSYSMerchantABA, types.FieldTSYSSettlementAgent, types.FieldTSYSReimbursementAttribute} {
			if empty(key) {
				result.add(SeverityWarning, key, RuleDebitComplete,
					fmt.Sprintf("%s is empty although %s is set", key, types.FieldTSYSDebitSharingGroup))
			}
		}
	}

	if v.options.CheckFormats {
		checkFormats(fields, result)
	}

	return result
}
