package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

func fieldMap(values map[string]string) types.FieldMap {
	m := types.NewFieldMap()
	for k, v := range values {
		m[k] = v
	}
	return m
}

func TestValidateEmptyTSYS(t *testing.T) {
	t.Parallel()

	first := Validate(types.NewFieldMap(), types.DialectTSYS)
	assert.False(t, first.IsValid)
	assert.Equal(t, []string{
		"TSYS_Merchant_ID is required for TSYS",
		"TSYS_Terminal_ID is required for TSYS",
		"TSYS_Terminal_Number is required for TSYS",
	}, first.Errors)
	assert.Equal(t, []string{"Merchant_Name is empty"}, first.Warnings)
	assert.Len(t, first.Issues, 4)

	second := Validate(types.NewFieldMap(), types.DialectTSYS)
	assert.Equal(t, first, second)
}

func TestValidateCompleteTSYS(t *testing.T) {
	t.Parallel()

	r := Validate(fieldMap(map[string]string{
		types.FieldTSYSMerchantID:     "123456789012",
		types.FieldTSYSTerminalID:     "787654321",
		types.FieldTSYSTerminalNumber: "0001",
		types.FieldMerchantName:       "CORNER DELI",
	}), types.DialectTSYS)
	assert.True(t, r.IsValid)
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Warnings)
}

func TestValidateTSYSUntransformedTerminalID(t *testing.T) {
	t.Parallel()

	r := Validate(fieldMap(map[string]string{
		types.FieldTSYSMerchantID:     "1",
		types.FieldTSYSTerminalID:     "V87654321",
		types.FieldTSYSTerminalNumber: "0001",
		types.FieldMerchantName:       "X",
	}), types.DialectTSYS)
	assert.True(t, r.IsValid)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, RuleTerminalTransform, r.Issues[0].Rule)

	r = Validate(fieldMap(map[string]string{types.FieldTSYSTerminalID: "V1", types.FieldMerchantName: "X"}), types.DialectPropelr)
	assert.Empty(t, r.Warnings)
}

func TestValidateHeartland(t *testing.T) {
	t.Parallel()

	r := Validate(types.NewFieldMap(), types.DialectHeartland)
	assert.Equal(t, []string{
		"Merchant_ID or TSYS_Merchant_ID is required for Heartland",
		"Merchant_Name is required for Heartland",
		"TSYS_Terminal_ID is required for Heartland",
	}, r.Errors)
	assert.Equal(t, []string{"Merchant_Name is empty"}, r.Warnings)

	r = Validate(fieldMap(map[string]string{
		types.FieldTSYSMerchantID: "000111222",
		types.FieldMerchantName:   "WEATHERTECH",
		types.FieldTSYSTerminalID: "V7654321",
	}), types.DialectHeartland)
	assert.True(t, r.IsValid)
	assert.Empty(t, r.Warnings)
}

func TestValidateUR(t *testing.T) {
	t.Parallel()

	r := Validate(types.NewFieldMap(), types.DialectUR)
	assert.Equal(t, []string{"Merchant_Name is required for UR"}, r.Errors)
	assert.Equal(t, []string{"Merchant_Name is empty"}, r.Warnings)

	r = Validate(types.NewFieldMap(), types.DialectUnknown)
	assert.True(t, r.IsValid)
	assert.Equal(t, []string{"Merchant_Name is empty"}, r.Warnings)
}

func TestValidateDebitCompleteness(t *testing.T) {
	t.Parallel()

	r := Validate(fieldMap(map[string]string{
		types.FieldMerchantName:          "HARBOR MARINE",
		types.FieldTSYSDebitSharingGroup: "G8E7LYWQNZV",
		types.FieldTSYSSettlementAgent:   "V074",
	}), types.DialectUR)
	assert.True(t, r.IsValid)
	assert.Equal(t, []string{
		"TSYS_Merchant_ABA is empty although TSYS_Debit_Sharing_Group is set",
		"TSYS_Reimbursement_Attribute is empty although TSYS_Debit_Sharing_Group is set",
	}, r.Warnings)
}

func TestValidateIssueOrderInterleaves(t *testing.T) {
	t.Parallel()

	r := Validate(fieldMap(map[string]string{types.FieldTSYSTerminalID: "V1"}), types.DialectTSYS)
	require.Len(t, r.Issues, 4)
	assert.Equal(t, SeverityError, r.Issues[0].Severity)
	assert.Equal(t, types.FieldTSYSMerchantID, r.Issues[0].Field)
	assert.Equal(t, types.FieldTSYSTerminalNumber, r.Issues[1].Field)
	assert.Equal(t, SeverityWarning, r.Issues[2].Severity)
	assert.Equal(t, types.FieldMerchantName, r.Issues[2].Field)
	assert.Equal(t, types.FieldTSYSTerminalID, r.Issues[3].Field)
}

func TestValidateFormats(t *testing.T) {
	t.Parallel()

	fields := fieldMap(map[string]string{
		types.FieldMerchantName:       "CORNER DELI",
		types.FieldMerchantZip:        "6410",
		types.FieldTSYSMerchantID:     "12345A",
		types.FieldTSYSTerminalID:     "787654321",
		types.FieldTSYSTerminalNumber: "1",
		types.FieldTSYSCategoryCode:   "5812",
	})

	assert.Empty(t, Validate(fields, types.DialectTSYS).Warnings)

	r := NewValidator(Options{CheckFormats: true}).Validate(fields, types.DialectTSYS)
	assert.True(t, r.IsValid)
	assert.Equal(t, []string{
		"Merchant_Zip: value '6410' is not a 5-digit ZIP code",
		"TSYS_Merchant_ID: value '12345A' is not numeric",
		"TSYS_Terminal_Number: value '1' should be 4 characters long (actual: 1)",
	}, r.Warnings)
}

func TestFormatIssues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "No validation issues.", FormatIssues(nil))
	assert.Equal(t, "No validation issues.", FormatIssues(newResult()))

	out := FormatIssues(Validate(types.NewFieldMap(), types.DialectUR))
	assert.Contains(t, out, "1 error(s) and 1 warning(s)")
	assert.Contains(t, out, "1. [ERROR] Merchant_Name: Merchant_Name is required for UR")
	assert.Contains(t, out, "2. [WARNING] Merchant_Name: Merchant_Name is empty")
}

func TestValidateZipFormats(t *testing.T) {
	t.Parallel()

	assert.Empty(t, validateZip("64105"))
	assert.Empty(t, validateZip("64105-1234"))
	assert.NotEmpty(t, validateZip("64105-12"))
	assert.NotEmpty(t, validateZip("ABCDE"))
}
