package varparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ginjaninja78/VAR-sheet-mapper/internal/errors"
	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

const tsysSheet = `TSYS Merchant Profile
| Merchant ID: | 123456789012 |
| DBA Name: | CORNER DELI |
| Address: | 100 MAIN ST |
| City: | KANSAS CITY |
| State: | MO |
| Zip Code: | 64105 |
| Terminal ID: | V87654321 |
| Terminal Number: | 0001 |
| SIC Code: | 5812 |
| Time Zone Ind: | 706 |
`

const propelrSheet = `Propelr VAR Sheet
Merchant Name: SUNRISE BAKERY
Merchant Number: 445566778899
V Number: V12345678
VISA MCC: 5462
Zip: 90210
Time Zone: 708
`

const heartlandSheet = `HEARTLAND PAYMENT SYSTEMS
CURBSTONE CARD
WEATHERTECHMerchant Name
MID: 000111222
5812MCC
V7654321Terminal ID
`

const urSheet = `UR VAR Sheet
| Merchant Number | 998877665544 |
| DBA Name | HARBOR MARINE |
| Terminal ID | V55555555 |
| MCC | 4457 |
| Zip Code | 33101 |
Authentication Code: AB12C
Sharing Group – G8E7LYWQNZV
ABA Routing Number: 123456789
Settlement Agent Code - V074
Reimbursement Attribute: Z
`

func TestParseTSYSTable(t *testing.T) {
	t.Parallel()

	rec, err := Parse(tsysSheet, "")
	require.NoError(t, err)

	assert.Equal(t, types.DialectTSYS, rec.Format)
	assert.Equal(t, map[string]string{
		types.MerchantID:      "123456789012",
		types.MerchantDBAName: "CORNER DELI",
		types.MerchantAddress: "100 MAIN ST",
		types.MerchantCity:    "KANSAS CITY",
		types.MerchantState:   "MO",
		types.MerchantZip:     "64105",
	}, rec.Merchant)
	assert.Equal(t, map[string]string{
		types.TerminalID:          "V87654321",
		types.TerminalNumber:      "0001",
		types.TerminalSICCode:     "5812",
		types.TerminalTimeZoneInd: "706",
	}, rec.Terminal)
	assert.Empty(t, rec.Debit)
	assert.Nil(t, rec.UR)
	assert.Empty(t, rec.RawText)
}

func TestParseTSYSFlowingLayout(t *testing.T) {
	t.Parallel()

	text := "TSYS\nMerchant ID: 123 DBA Name: FOO BAR Terminal ID: V1\nChain Number: 081000 Agent Number: 7100"
	rec, err := Parse(text, types.DialectTSYS)
	require.NoError(t, err)

	assert.Equal(t, "123", rec.Merchant[types.MerchantID])
	assert.Equal(t, "FOO BAR", rec.Merchant[types.MerchantDBAName])
	assert.Equal(t, "V1", rec.Terminal[types.TerminalID])
	assert.Equal(t, "081000", rec.Terminal[types.TerminalChainNumber])
	assert.Equal(t, "7100", rec.Terminal[types.TerminalAgentNumber])
}

func TestParsePropelr(t *testing.T) {
	t.Parallel()

	rec, err := Parse(propelrSheet, "")
	require.NoError(t, err)

	assert.Equal(t, types.DialectPropelr, rec.Format)
	assert.Equal(t, "SUNRISE BAKERY", rec.Merchant[types.MerchantDBAName])
	assert.Equal(t, "445566778899", rec.Merchant[types.MerchantID])
	assert.Equal(t, "90210", rec.Merchant[types.MerchantZip])
	assert.Equal(t, "V12345678", rec.Terminal[types.TerminalID])
	assert.Equal(t, "5462", rec.Terminal[types.TerminalSICCode])
	assert.Equal(t, "708", rec.Terminal[types.TerminalTimeZoneInd])
	assert.NotContains(t, rec.Terminal, types.TerminalNumber)
}

func TestParseHeartland(t *testing.T) {
	t.Parallel()

	t.Run("glued values", func(t *testing.T) {
		t.Parallel()
		rec, err := Parse(heartlandSheet, "")
		require.NoError(t, err)

		assert.Equal(t, types.DialectHeartland, rec.Format)
		assert.Equal(t, "WEATHERTECH", rec.Merchant[types.MerchantDBAName])
		assert.Equal(t, "000111222", rec.Merchant[types.MerchantID])
		assert.Equal(t, "5812", rec.Terminal[types.TerminalSICCode])
		assert.Equal(t, "V7654321", rec.Terminal[types.TerminalID])
	})

	t.Run("minimal scenario", func(t *testing.T) {
		t.Parallel()
		rec, err := Parse("HEADER\nCURBSTONE CARD\nWEATHERTECHMerchant Name\nMID: 000111222\nFOOTER", types.DialectHeartland)
		require.NoError(t, err)

		assert.Equal(t, "WEATHERTECH", rec.Merchant[types.MerchantDBAName])
		assert.Equal(t, "000111222", rec.Merchant[types.MerchantID])
	})

	names := []string{"CABIN GRILL", "PYRAMID PIZZA", "ROBIN HOOD CAFE", "THE STATE DELI", "MIDTOWN TIDES"}
	for _, name := range names {
		name := name
		t.Run("glued name "+name, func(t *testing.T) {
			t.Parallel()
			rec, err := Parse("HEARTLAND\nCURBSTONE CARD\n"+name+"Merchant Name\nMID: 000111222\nFOOTER", types.DialectHeartland)
			require.NoError(t, err)

			assert.Equal(t, name, rec.Merchant[types.MerchantDBAName])
			assert.Equal(t, "000111222", rec.Merchant[types.MerchantID])
			assert.NotContains(t, rec.Terminal, types.TerminalBinNumber)
			assert.NotContains(t, rec.Terminal, types.TerminalID)
		})
	}

	t.Run("acronym label glued to digits", func(t *testing.T) {
		t.Parallel()
		rec, err := Parse("CURBSTONE CARD\nCABIN GRILLMerchant Name\n000111222MID\n400123BIN\n", types.DialectHeartland)
		require.NoError(t, err)

		assert.Equal(t, "CABIN GRILL", rec.Merchant[types.MerchantDBAName])
		assert.Equal(t, "000111222", rec.Merchant[types.MerchantID])
		assert.Equal(t, "400123", rec.Terminal[types.TerminalBinNumber])
	})

	t.Run("name on the line above its label", func(t *testing.T) {
		t.Parallel()
		rec, err := Parse("CURBSTONE CARD\nGREEN LEAF CAFE\nMerchant Name\n", types.DialectHeartland)
		require.NoError(t, err)
		assert.Equal(t, "GREEN LEAF CAFE", rec.Merchant[types.MerchantDBAName])
	})

	t.Run("boilerplate rejected in favour of forward label", func(t *testing.T) {
		t.Parallel()
		rec, err := Parse("CURBSTONE CARD\nPage 1Merchant Name\nMerchant Name: BLUE OX\n", types.DialectHeartland)
		require.NoError(t, err)
		assert.Equal(t, "BLUE OX", rec.Merchant[types.MerchantDBAName])
	})

	t.Run("lowercase candidate rejected", func(t *testing.T) {
		t.Parallel()
		rec, err := Parse("CURBSTONE CARD\nweathertechMerchant Name\n", types.DialectHeartland)
		require.NoError(t, err)
		assert.NotContains(t, rec.Merchant, types.MerchantDBAName)
		assert.Contains(t, rec.Terminal, types.TerminalSICCode)
	})
}

func TestParseUR(t *testing.T) {
	t.Parallel()

	rec, err := Parse(urSheet, "")
	require.NoError(t, err)

	assert.Equal(t, types.DialectUR, rec.Format)
	assert.Equal(t, "998877665544", rec.Merchant[types.MerchantID])
	assert.Equal(t, "HARBOR MARINE", rec.Merchant[types.MerchantDBAName])
	assert.Equal(t, "33101", rec.Merchant[types.MerchantZip])
	assert.Equal(t, "V55555555", rec.Terminal[types.TerminalID])
	assert.Equal(t, "4457", rec.Terminal[types.TerminalSICCode])
	assert.Equal(t, map[string]string{
		types.URAuthenticationCode:     "AB12C",
		types.URSharingGroup:           "G8E7LYWQNZV",
		types.URABANumber:              "123456789",
		types.URSettlementAgent:        "V074",
		types.URReimbursementAttribute: "Z",
	}, rec.UR)
}

func TestParseURWithoutFreeTextFields(t *testing.T) {
	t.Parallel()

	rec, err := Parse("| DBA Name | HARBOR MARINE |", types.DialectUR)
	require.NoError(t, err)
	assert.NotNil(t, rec.UR)
	assert.Empty(t, rec.UR)
}

func TestParseNetworks(t *testing.T) {
	t.Parallel()

	text := "TSYS\nCard Types: VISA, MC, AMEX, DISCOVER\nAmex SE: 9876543210\nDebit Networks: STAR, NYCE, PULSE\n"
	rec, err := Parse(text, "")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Visa":       "Y",
		"Mastercard": "Y",
		"Amex":       "9876543210",
		"Discover":   "Y",
	}, rec.CardTypes)
	assert.Equal(t, map[string]string{
		DebitNetworksKey: "STAR, NYCE, PULSE",
		"STAR":           "Y",
		"NYCE":           "Y",
		"PULSE":          "Y",
	}, rec.Debit)
}

func TestParseUnknownUsesGeneric(t *testing.T) {
	t.Parallel()

	text := "Quarterly newsletter\nNothing to see here"
	assert.Equal(t, types.DialectUnknown, Detect(text))

	rec, err := Parse(text, "")
	require.NoError(t, err)
	assert.Equal(t, types.DialectUnknown, rec.Format)
	assert.Equal(t, text, rec.RawText)
	assert.Empty(t, rec.Merchant)
	assert.Empty(t, rec.Terminal)
	assert.Empty(t, rec.CardTypes)
	assert.Empty(t, rec.Debit)
	assert.Empty(t, rec.UR)
	assert.True(t, rec.IsEmpty())
}

func TestSICCodeAlwaysPresent(t *testing.T) {
	t.Parallel()

	for _, d := range types.Dialects {
		d := d
		t.Run(d.String(), func(t *testing.T) {
			t.Parallel()
			rec, err := Parse("", d)
			require.NoError(t, err)
			v, ok := rec.Terminal[types.TerminalSICCode]
			assert.True(t, ok)
			assert.Empty(t, v)
		})
	}
}

func TestParseIsIdempotent(t *testing.T) {
	t.Parallel()

	for _, text := range []string{tsysSheet, propelrSheet, heartlandSheet, urSheet} {
		first, err := Parse(text, "")
		require.NoError(t, err)
		second, err := Parse(text, "")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestParsePreconditions(t *testing.T) {
	t.Parallel()

	_, err := ParseReader(nil, types.DialectTSYS)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidArgument))

	_, err = Parse("TSYS", types.Dialect("Vantiv"))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidDialect))

	_, err = New(types.Dialect("Vantiv"), Options{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidDialect))

	_, err = New(types.DialectHeartland, Options{NameRejections: []string{"("}})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigInvalid))
}

func TestParseReader(t *testing.T) {
	t.Parallel()

	rec, err := ParseReader(strings.NewReader(tsysSheet), "")
	require.NoError(t, err)
	assert.Equal(t, "123456789012", rec.Merchant[types.MerchantID])
}

func TestRegistryCustomRejections(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(Options{NameRejections: []string{`^WEATHER`}})
	require.NoError(t, err)

	rec, err := reg.Parse(heartlandSheet, "")
	require.NoError(t, err)
	assert.NotContains(t, rec.Merchant, types.MerchantDBAName)
}
