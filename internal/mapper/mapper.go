// =============================================================================
// VAR Sheet Mapper - Field Mapper
// =============================================================================
//
// This package converts a types.ParsedRecord into the flat canonical field map
// consumed by the provisioning system.
//
// MAPPING STEPS (in order):
//   1. Every canonical key is initialized to "".
//   2. The dialect routine copies and derives values from the record:
//        - terminal IDs starting with V become 7 (TSYS and Propelr only)
//        - Merchant_Time_Zone from the ZIP code, else the 705-708 indicator
//        - KeyManagement_RKL_Device_GroupName from the dialect profile
//        - UR debit fields from the UR section
//   3. Profile defaults fill keys that are still empty.
//   4. When Processing_Debit is MHC, the four debit network fields get the
//      MHC constants. UR keeps its parsed values.
//   5. Profile transforms normalize values (padding, case, lookups).
//   6. Caller overrides are applied last. For UR, a parsed authentication
//      code is not replaced.
//
// Unknown dialects skip step 2 entirely. The result always contains every
// canonical key.
//
// =============================================================================

package mapper

import (
	"sort"
	"strings"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/config"
	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

// ProcessingDebitMHC is the Processing_Debit value that selects MHC debit.
const ProcessingDebitMHC = "MHC"

// Mapper maps parsed records using a set of dialect profiles.
// It holds no mutable state and is safe for concurrent use.
type Mapper struct {
	profiles config.Profiles
}

// New returns a Mapper. A nil profiles map selects the built-in profiles.
func New(profiles config.Profiles) *Mapper {
	if profiles == nil {
		profiles = config.DefaultProfiles()
	}
	return &Mapper{profiles: profiles}
}

var defaultMapper = New(nil)

// MapToSteam maps rec with the built-in profiles.
func MapToSteam(rec *types.ParsedRecord, overrides map[string]string, d types.Dialect) (types.FieldMap, error) {
	return defaultMapper.Map(rec, overrides, d)
}

// Map produces the canonical field map for rec. An empty d uses rec.Format.
// The errors are a nil record, an unsupported dialect tag and a profile
// transform that cannot run; missing source data yields empty values.
func (m *Mapper) Map(rec *types.ParsedRecord, overrides map[string]string, d types.Dialect) (types.FieldMap, error) {
	if rec == nil {
		return nil, apperrors.NewInvalidArgumentError("parsed record is nil")
	}
	if d == "" {
		d = rec.Format
	}
	if !d.IsKnown() && d != types.DialectUnknown {
		return nil, apperrors.NewInvalidDialectError(string(d))
	}

	profile := m.profiles.Get(d)
	fields := types.NewFieldMap()
	ovr := normalizeOverrides(overrides)

	switch d {
	case types.DialectTSYS:
		mapCommon(fields, rec)
		fields[types.FieldTSYSTerminalID] = transformTerminalID(rec.Terminal[types.TerminalID])
		fields[types.FieldRKLDeviceGroupName] = profile.RKLGroupName
	case types.DialectPropelr:
		mapPropelr(fields, rec, profile)
	case types.DialectHeartland:
		mapHeartland(fields, rec, profile)
	case types.DialectUR:
		mapUR(fields, rec, profile)
	}

	for k, v := range profile.Defaults {
		if fields[k] == "" {
			fields[k] = v
		}
	}

	if d != types.DialectUR && strings.EqualFold(strings.TrimSpace(ovr[types.FieldProcessingDebit]), ProcessingDebitMHC) {
		fields[types.FieldTSYSDebitSharingGroup] = profile.MHC.SharingGroup
		fields[types.FieldTSYSMerchantABA] = profile.MHC.MerchantABA
		fields[types.FieldTSYSSettlementAgent] = profile.MHC.SettlementAgent
		fields[types.FieldTSYSReimbursementAttribute] = profile.MHC.ReimbursementAttribute
	}

	if err := applyTransforms(fields, profile.Transforms); err != nil {
		return nil, err
	}

	for k, v := range ovr {
		if d == types.DialectUR && k == types.FieldTSYSAuthenticationCode && fields[k] != "" {
			continue
		}
		fields[k] = v
	}

	return fields, nil
}

// mapCommon copies the fields every dialect maps the same way. The terminal
// ID and the RKL group name are left to the dialect routine.
func mapCommon(fields types.FieldMap, rec *types.ParsedRecord) {
	merchant, terminal := rec.Merchant, rec.Terminal

	fields[types.FieldMerchantName] = merchant[types.MerchantDBAName]
	fields[types.FieldMerchantAddress] = merchant[types.MerchantAddress]
	fields[types.FieldMerchantCity] = merchant[types.MerchantCity]
	fields[types.FieldMerchantState] = merchant[types.MerchantState]
	fields[types.FieldMerchantZip] = merchant[types.MerchantZip]
	fields[types.FieldMerchantTimeZone] = ResolveTimeZone(merchant[types.MerchantZip], terminal[types.TerminalTimeZoneInd])
	fields[types.FieldTSYSMerchantID] = merchant[types.MerchantID]

	fields[types.FieldTSYSTerminalNumber] = terminal[types.TerminalNumber]
	fields[types.FieldTSYSStoreNumber] = terminal[types.TerminalStoreNumber]
	fields[types.FieldTSYSChainNumber] = terminal[types.TerminalChainNumber]
	fields[types.FieldTSYSAgentNumber] = terminal[types.TerminalAgentNumber]
	fields[types.FieldTSYSBinNumber] = terminal[types.TerminalBinNumber]
	fields[types.FieldTSYSCategoryCode] = terminal[types.TerminalSICCode]
}

func mapPropelr(fields types.FieldMap, rec *types.ParsedRecord, profile *config.DialectProfile) {
	mapCommon(fields, rec)
	fields[types.FieldTSYSTerminalID] = transformTerminalID(rec.Terminal[types.TerminalID])
	fields[types.FieldRKLDeviceGroupName] = profile.RKLGroupName
}

// mapHeartland passes the terminal ID through and fills Merchant_ID as well,
// since Heartland sheets carry a single merchant number.
func mapHeartland(fields types.FieldMap, rec *types.ParsedRecord, profile *config.DialectProfile) {
	mapCommon(fields, rec)
	fields[types.FieldMerchantID] = rec.Merchant[types.MerchantID]
	fields[types.FieldTSYSTerminalID] = rec.Terminal[types.TerminalID]
	fields[types.FieldRKLDeviceGroupName] = profile.RKLGroupName
}

func mapUR(fields types.FieldMap, rec *types.ParsedRecord, profile *config.DialectProfile) {
	mapCommon(fields, rec)
	fields[types.FieldTSYSTerminalID] = rec.Terminal[types.TerminalID]
	fields[types.FieldRKLDeviceGroupName] = profile.RKLGroupName

	fields[types.FieldTSYSAuthenticationCode] = rec.UR[types.URAuthenticationCode]
	fields[types.FieldTSYSDebitSharingGroup] = rec.UR[types.URSharingGroup]
	fields[types.FieldTSYSMerchantABA] = rec.UR[types.URABANumber]
	fields[types.FieldTSYSSettlementAgent] = rec.UR[types.URSettlementAgent]
	fields[types.FieldTSYSReimbursementAttribute] = rec.UR[types.URReimbursementAttribute]
}

// transformTerminalID replaces a leading V or v with 7.
func transformTerminalID(id string) string {
	if strings.HasPrefix(id, "V") || strings.HasPrefix(id, "v") {
		return "7" + id[1:]
	}
	return id
}

// normalizeOverrides keeps the canonical keys of overrides, spelled
// canonically. Unknown keys are dropped. Keys are visited in sorted order so
// that two spellings of one field resolve the same way on every call.
func normalizeOverrides(overrides map[string]string) map[string]string {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(overrides))
	for _, k := range keys {
		if key, ok := types.LookupCanonicalKey(k); ok {
			out[key] = overrides[k]
		}
	}
	return out
}
