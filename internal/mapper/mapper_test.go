package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/config"
	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/varparser"
)

func record(d types.Dialect, merchant, terminal map[string]string) *types.ParsedRecord {
	rec := types.NewParsedRecord(d)
	for k, v := range merchant {
		rec.Merchant[k] = v
	}
	for k, v := range terminal {
		rec.Terminal[k] = v
	}
	return rec
}

func TestMapEveryDialectReturnsAllKeys(t *testing.T) {
	t.Parallel()

	for _, d := range append([]types.Dialect{types.DialectUnknown}, types.Dialects...) {
		d := d
		t.Run(d.String(), func(t *testing.T) {
			t.Parallel()
			rec, err := varparser.Parse("", d)
			require.NoError(t, err)

			fields, err := MapToSteam(rec, nil, d)
			require.NoError(t, err)
			assert.Len(t, fields, len(types.CanonicalKeys))
			for _, k := range types.CanonicalKeys {
				_, ok := fields[k]
				assert.True(t, ok, k)
			}
		})
	}
}

func TestMapTerminalIDTransform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dialect types.Dialect
		id      string
		want    string
	}{
		{types.DialectTSYS, "V12345678", "712345678"},
		{types.DialectTSYS, "v12345678", "712345678"},
		{types.DialectTSYS, "812345678", "812345678"},
		{types.DialectPropelr, "V12345678", "712345678"},
		{types.DialectHeartland, "V12345678", "V12345678"},
		{types.DialectUR, "V12345678", "V12345678"},
	}

	for _, tt := range tests {
		rec := record(tt.dialect, nil, map[string]string{types.TerminalID: tt.id})
		fields, err := MapToSteam(rec, nil, tt.dialect)
		require.NoError(t, err)
		assert.Equal(t, tt.want, fields[types.FieldTSYSTerminalID], "%s %s", tt.dialect, tt.id)
	}
}

func TestMapTimeZonePrecedence(t *testing.T) {
	t.Parallel()

	rec := record(types.DialectTSYS,
		map[string]string{types.MerchantZip: "90210"},
		map[string]string{types.TerminalTimeZoneInd: "706"})
	fields, err := MapToSteam(rec, nil, types.DialectTSYS)
	require.NoError(t, err)
	assert.Equal(t, TimeZonePacific, fields[types.FieldMerchantTimeZone])

	rec = record(types.DialectTSYS, nil, map[string]string{types.TerminalTimeZoneInd: "706"})
	fields, err = MapToSteam(rec, nil, types.DialectTSYS)
	require.NoError(t, err)
	assert.Equal(t, TimeZoneCentral, fields[types.FieldMerchantTimeZone])

	rec = record(types.DialectTSYS, nil, nil)
	fields, err = MapToSteam(rec, map[string]string{types.FieldMerchantTimeZone: "Eastern"}, types.DialectTSYS)
	require.NoError(t, err)
	assert.Equal(t, "Eastern", fields[types.FieldMerchantTimeZone])
}

func TestMapRKLGroupName(t *testing.T) {
	t.Parallel()

	want := map[types.Dialect]string{
		types.DialectTSYS:      "WellsTFTSYS-1301",
		types.DialectPropelr:   "WellsTFTSYS-1301",
		types.DialectUR:        "WellsTFTSYS-1301",
		types.DialectHeartland: "TSYSCurbstone-1301",
		types.DialectUnknown:   "",
	}
	for d, name := range want {
		fields, err := MapToSteam(types.NewParsedRecord(d), nil, d)
		require.NoError(t, err)
		assert.Equal(t, name, fields[types.FieldRKLDeviceGroupName], d.String())
	}
}

func TestMapMHCDebit(t *testing.T) {
	t.Parallel()

	mhc := map[string]string{types.FieldProcessingDebit: "MHC"}

	for _, d := range []types.Dialect{types.DialectTSYS, types.DialectPropelr, types.DialectHeartland, types.DialectUnknown} {
		fields, err := MapToSteam(types.NewParsedRecord(d), mhc, d)
		require.NoError(t, err)
		assert.Equal(t, "G8E7LYWQNZV", fields[types.FieldTSYSDebitSharingGroup], d.String())
		assert.Equal(t, "990025276", fields[types.FieldTSYSMerchantABA], d.String())
		assert.Equal(t, "V074", fields[types.FieldTSYSSettlementAgent], d.String())
		assert.Equal(t, "Z", fields[types.FieldTSYSReimbursementAttribute], d.String())
		assert.Equal(t, "MHC", fields[types.FieldProcessingDebit], d.String())
	}

	fields, err := MapToSteam(types.NewParsedRecord(types.DialectTSYS), nil, types.DialectTSYS)
	require.NoError(t, err)
	assert.Empty(t, fields[types.FieldTSYSDebitSharingGroup])

	rec := types.NewParsedRecord(types.DialectUR)
	rec.UR = map[string]string{
		types.URSharingGroup:           "URGROUP1",
		types.URABANumber:              "111000025",
		types.URSettlementAgent:        "V100",
		types.URReimbursementAttribute: "A",
	}
	fields, err = MapToSteam(rec, mhc, types.DialectUR)
	require.NoError(t, err)
	assert.Equal(t, "URGROUP1", fields[types.FieldTSYSDebitSharingGroup])
	assert.Equal(t, "111000025", fields[types.FieldTSYSMerchantABA])
	assert.Equal(t, "V100", fields[types.FieldTSYSSettlementAgent])
	assert.Equal(t, "A", fields[types.FieldTSYSReimbursementAttribute])
}

func TestMapOverrides(t *testing.T) {
	t.Parallel()

	rec := record(types.DialectTSYS, map[string]string{types.MerchantDBAName: "CORNER DELI"}, nil)
	fields, err := MapToSteam(rec, map[string]string{
		types.FieldMerchantName:           "OVERRIDDEN",
		"contactless_signature":           "Y",
		"Not_A_Field":                     "ignored",
		types.FieldTSYSAuthenticationCode: "OVR01",
	}, types.DialectTSYS)
	require.NoError(t, err)

	assert.Equal(t, "OVERRIDDEN", fields[types.FieldMerchantName])
	assert.Equal(t, "Y", fields[types.FieldContactlessSignature])
	assert.Equal(t, "OVR01", fields[types.FieldTSYSAuthenticationCode])
	assert.NotContains(t, fields, "Not_A_Field")
	assert.Len(t, fields, len(types.CanonicalKeys))
}

func TestMapURAuthenticationCodePrecedence(t *testing.T) {
	t.Parallel()

	ovr := map[string]string{types.FieldTSYSAuthenticationCode: "OVR01"}

	rec := types.NewParsedRecord(types.DialectUR)
	rec.UR = map[string]string{types.URAuthenticationCode: "AB12C"}
	fields, err := MapToSteam(rec, ovr, types.DialectUR)
	require.NoError(t, err)
	assert.Equal(t, "AB12C", fields[types.FieldTSYSAuthenticationCode])

	rec.UR = map[string]string{}
	fields, err = MapToSteam(rec, ovr, types.DialectUR)
	require.NoError(t, err)
	assert.Equal(t, "OVR01", fields[types.FieldTSYSAuthenticationCode])
}

func TestMapProfileDefaults(t *testing.T) {
	t.Parallel()

	rec := record(types.DialectPropelr, nil, map[string]string{types.TerminalStoreNumber: "0042"})
	fields, err := MapToSteam(rec, nil, types.DialectPropelr)
	require.NoError(t, err)
	assert.Equal(t, "0042", fields[types.FieldTSYSStoreNumber])
	assert.Equal(t, "0001", fields[types.FieldTSYSTerminalNumber])

	profiles := config.DefaultProfiles()
	profiles[types.DialectTSYS].RKLGroupName = "Custom-1"
	profiles[types.DialectTSYS].Defaults[types.FieldContactlessSignature] = "N"
	fields, err = New(profiles).Map(types.NewParsedRecord(types.DialectTSYS), nil, types.DialectTSYS)
	require.NoError(t, err)
	assert.Equal(t, "Custom-1", fields[types.FieldRKLDeviceGroupName])
	assert.Equal(t, "N", fields[types.FieldContactlessSignature])
}

func TestMapHeartlandMerchantID(t *testing.T) {
	t.Parallel()

	rec := record(types.DialectHeartland, map[string]string{types.MerchantID: "000111222"}, nil)
	fields, err := MapToSteam(rec, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "000111222", fields[types.FieldMerchantID])
	assert.Equal(t, "000111222", fields[types.FieldTSYSMerchantID])
}

func TestMapPreconditions(t *testing.T) {
	t.Parallel()

	_, err := MapToSteam(nil, nil, types.DialectTSYS)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidArgument))

	_, err = MapToSteam(types.NewParsedRecord(types.DialectTSYS), nil, types.Dialect("Vantiv"))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidDialect))
}

func TestMapTSYSScenario(t *testing.T) {
	t.Parallel()

	rec, err := varparser.Parse("TSYS\n| Merchant ID: | 123456789012 |\n| Terminal ID: | V87654321 |\n", "")
	require.NoError(t, err)
	assert.Equal(t, "123456789012", rec.Merchant[types.MerchantID])

	fields, err := MapToSteam(rec, nil, rec.Format)
	require.NoError(t, err)
	assert.Equal(t, "787654321", fields[types.FieldTSYSTerminalID])
	assert.Equal(t, "123456789012", fields[types.FieldTSYSMerchantID])
}
