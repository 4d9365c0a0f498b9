package types

import "strings"

// =============================================================================
// CANONICAL FIELDS
// =============================================================================

// Canonical destination field names used by the provisioning system.
const (
	FieldMerchantID                 = "Merchant_ID"
	FieldMerchantName               = "Merchant_Name"
	FieldMerchantAddress            = "Merchant_Address"
	FieldMerchantCity               = "Merchant_City"
	FieldMerchantState              = "Merchant_State"
	FieldMerchantZip                = "Merchant_Zip"
	FieldMerchantTimeZone           = "Merchant_Time_Zone"
	FieldTSYSMerchantID             = "TSYS_Merchant_ID"
	FieldTSYSTerminalID             = "TSYS_Terminal_ID"
	FieldTSYSTerminalNumber         = "TSYS_Terminal_Number"
	FieldTSYSStoreNumber            = "TSYS_Store_Number"
	FieldTSYSChainNumber            = "TSYS_Chain_Number"
	FieldTSYSAgentNumber            = "TSYS_Agent_Number"
	FieldTSYSBinNumber              = "TSYS_Bin_Number"
	FieldTSYSCategoryCode           = "TSYS_Category_Code"
	FieldTSYSAuthenticationCode     = "TSYS_Authentication_Code"
	FieldTSYSDebitSharingGroup      = "TSYS_Debit_Sharing_Group"
	FieldTSYSMerchantABA            = "TSYS_Merchant_ABA"
	FieldTSYSSettlementAgent        = "TSYS_Settlement_Agent"
	FieldTSYSReimbursementAttribute = "TSYS_Reimbursement_Attribute"
	FieldRKLDeviceGroupName         = "KeyManagement_RKL_Device_GroupName"
	FieldContactlessSignature       = "Contactless_Signature"
	FieldProcessingDebit            = "Processing_Debit"
)

// CanonicalKeys is the fixed, ordered key set of every FieldMap.
var CanonicalKeys = []string{
	FieldMerchantID,
	FieldMerchantName,
	FieldMerchantAddress,
	FieldMerchantCity,
	FieldMerchantState,
	FieldMerchantZip,
	FieldMerchantTimeZone,
	FieldTSYSMerchantID,
	FieldTSYSTerminalID,
	FieldTSYSTerminalNumber,
	FieldTSYSStoreNumber,
	FieldTSYSChainNumber,
	FieldTSYSAgentNumber,
	FieldTSYSBinNumber,
	FieldTSYSCategoryCode,
	FieldTSYSAuthenticationCode,
	FieldTSYSDebitSharingGroup,
	FieldTSYSMerchantABA,
	FieldTSYSSettlementAgent,
	FieldTSYSReimbursementAttribute,
	FieldRKLDeviceGroupName,
	FieldContactlessSignature,
	FieldProcessingDebit,
}

var canonicalIndex = func() map[string]int {
	idx := make(map[string]int, len(CanonicalKeys))
	for i, k := range CanonicalKeys {
		idx[k] = i
	}
	return idx
}()

var canonicalFold = func() map[string]string {
	fold := make(map[string]string, len(CanonicalKeys))
	for _, k := range CanonicalKeys {
		fold[strings.ToLower(k)] = k
	}
	return fold
}()

// IsCanonicalKey reports whether key is one of CanonicalKeys.
func IsCanonicalKey(key string) bool {
	_, ok := canonicalIndex[key]
	return ok
}

// LookupCanonicalKey returns the canonical spelling of name, ignoring case.
// Config layers such as viper lowercase map keys, so overrides read from
// them are normalized through here.
func LookupCanonicalKey(name string) (string, bool) {
	k, ok := canonicalFold[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// FieldMap is the flat canonical mapping produced by the mapper.
// Every key in CanonicalKeys is present, bound to a string.
type FieldMap map[string]string

// NewFieldMap returns a FieldMap with every canonical key set to "".
func NewFieldMap() FieldMap {
	m := make(FieldMap, len(CanonicalKeys))
	for _, k := range CanonicalKeys {
		m[k] = ""
	}
	return m
}

// Get returns the value for key, or "" when absent.
func (m FieldMap) Get(key string) string {
	return m[key]
}

// Entry is a single key/value pair in canonical order.
type Entry struct {
	Key   string
	Value string
}

// Entries returns the canonical keys and their values in CanonicalKeys order.
func (m FieldMap) Entries() []Entry {
	out := make([]Entry, 0, len(CanonicalKeys))
	for _, k := range CanonicalKeys {
		out = append(out, Entry{Key: k, Value: m[k]})
	}
	return out
}
