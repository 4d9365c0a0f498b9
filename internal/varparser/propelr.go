package varparser

import "github.com/ginjaninja78/VAR-sheet-mapper/internal/types"

// Propelr prints the TSYS V number and the Visa category code under its own
// labels. Everything else reads like a TSYS sheet.
var propelrFields = joinFields(
	[]fieldSpec{
		{sectionMerchant, types.MerchantID, []string{"Merchant ID", "Merchant Number", "MID"}},
		{sectionMerchant, types.MerchantDBAName, []string{"DBA Name", "Merchant Name", "DBA"}},
	},
	addressFields,
	[]fieldSpec{
		{sectionTerminal, types.TerminalNumber, []string{"Terminal Number", "Terminal #"}},
		{sectionTerminal, types.TerminalID, []string{"V Number", "Terminal ID", "TID"}},
		{sectionTerminal, types.TerminalStoreNumber, []string{"Store Number", "Store #"}},
		{sectionTerminal, types.TerminalChainNumber, []string{"Chain Number", "Chain"}},
		{sectionTerminal, types.TerminalAgentNumber, []string{"Agent Number", "Agent"}},
		{sectionTerminal, types.TerminalBinNumber, []string{"BIN Number", "BIN"}},
		{sectionTerminal, types.TerminalSICCode, []string{"VISA MCC", "MCC", "SIC Code"}},
		{sectionTerminal, types.TerminalTimeZoneInd, []string{"Time Zone Ind", "Time Zone"}},
	},
)

// propelrParser reads Propelr sheets with forward extraction.
type propelrParser struct {
	x *extractor
}

func newPropelrParser() *propelrParser {
	return &propelrParser{x: newExtractor(vocabulary(propelrFields, networkLabels()), true)}
}

func (p *propelrParser) Dialect() types.Dialect { return types.DialectPropelr }

func (p *propelrParser) Parse(text string) *types.ParsedRecord {
	rec := types.NewParsedRecord(types.DialectPropelr)
	parseForward(rec, text, p.x, propelrFields)
	parseNetworks(rec, text, p.x)
	return finish(rec)
}
