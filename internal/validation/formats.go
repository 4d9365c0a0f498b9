package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

// =============================================================================
// FORMAT CHECKS
// =============================================================================

// formatRule describes the expected shape of a canonical field.
type formatRule struct {
	field    string
	dataType string
	lengths  []int
}

// formatRules are evaluated in canonical order. Empty values are skipped;
// missing values are the business of the required checks.
var formatRules = []formatRule{
	{field: types.FieldMerchantZip, dataType: "zip"},
	{field: types.FieldTSYSMerchantID, dataType: "numeric"},
	{field: types.FieldTSYSTerminalID, dataType: "numeric"},
	{field: types.FieldTSYSTerminalNumber, dataType: "numeric", lengths: []int{4}},
	{field: types.FieldTSYSStoreNumber, dataType: "numeric", lengths: []int{4}},
	{field: types.FieldTSYSChainNumber, dataType: "numeric"},
	{field: types.FieldTSYSAgentNumber, dataType: "numeric"},
	{field: types.FieldTSYSBinNumber, dataType: "numeric", lengths: []int{6}},
	{field: types.FieldTSYSCategoryCode, dataType: "numeric", lengths: []int{4}},
	{field: types.FieldTSYSAuthenticationCode, dataType: "alphanumeric"},
	{field: types.FieldTSYSDebitSharingGroup, dataType: "alphanumeric"},
	{field: types.FieldTSYSMerchantABA, dataType: "numeric", lengths: []int{9}},
	{field: types.FieldTSYSSettlementAgent, dataType: "alphanumeric"},
	{field: types.FieldTSYSReimbursementAttribute, dataType: "alphanumeric", lengths: []int{1}},
}

func checkFormats(fields types.FieldMap, result *Result) {
	for _, rule := range formatRules {
		value := strings.TrimSpace(fields[rule.field])
		if value == "" {
			continue
		}
		if msg := validateDataType(value, rule.dataType); msg != "" {
			result.add(SeverityWarning, rule.field, RuleFormat, fmt.Sprintf("%s: %s", rule.field, msg))
			continue
		}
		if msg := validateLength(value, rule.lengths); msg != "" {
			result.add(SeverityWarning, rule.field, RuleFormat, fmt.Sprintf("%s: %s", rule.field, msg))
		}
	}
}

// validateDataType validates a value against a data type.
//
// SUPPORTED DATA TYPES:
//   - numeric: digits only
//   - alphanumeric: letters and digits only
//   - zip: 5 digits, optionally followed by -dddd
func validateDataType(value, dataType string) string {
	switch dataType {
	case "numeric":
		return validateNumeric(value)
	case "alphanumeric":
		return validateAlphanumeric(value)
	case "zip":
		return validateZip(value)
	default:
		return ""
	}
}

// validateNumeric validates that a value contains only digits. Leading
// zeros are significant, so the value is not parsed as an integer.
func validateNumeric(value string) string {
	for _, r := range value {
		if !unicode.IsDigit(r) {
			return fmt.Sprintf("value '%s' is not numeric", value)
		}
	}
	return ""
}

// validateAlphanumeric validates that a value contains only letters and numbers.
func validateAlphanumeric(value string) string {
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return fmt.Sprintf("value '%s' contains non-alphanumeric characters", value)
		}
	}
	return ""
}

func validateZip(value string) string {
	base, ext, hasExt := strings.Cut(value, "-")
	if len(base) != 5 || validateNumeric(base) != "" {
		return fmt.Sprintf("value '%s' is not a 5-digit ZIP code", value)
	}
	if hasExt && (len(ext) != 4 || validateNumeric(ext) != "") {
		return fmt.Sprintf("value '%s' has an invalid ZIP+4 extension", value)
	}
	return ""
}

func validateLength(value string, lengths []int) string {
	if len(lengths) == 0 {
		return ""
	}
	n := len([]rune(value))
	for _, l := range lengths {
		if n == l {
			return ""
		}
	}
	return fmt.Sprintf("value '%s' should be %s characters long (actual: %d)", value, joinInts(lengths), n)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " or ")
}

// =============================================================================
// ISSUE FORMATTING
// =============================================================================

// FormatIssues formats a validation result for display or logging.
func FormatIssues(result *Result) string {
	if result == nil || len(result.Issues) == 0 {
		return "No validation issues."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s) and %d warning(s):\n\n",
		len(result.Errors), len(result.Warnings)))

	for i, issue := range result.Issues {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, issue.String()))
	}

	return builder.String()
}
