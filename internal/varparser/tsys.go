package varparser

import "github.com/ginjaninja78/VAR-sheet-mapper/internal/types"

// addressFields are printed the same way on every forward-read sheet.
var addressFields = []fieldSpec{
	{sectionMerchant, types.MerchantAddress, []string{"Street Address", "Merchant Address", "Address"}},
	{sectionMerchant, types.MerchantCity, []string{"City"}},
	{sectionMerchant, types.MerchantState, []string{"State"}},
	{sectionMerchant, types.MerchantZip, []string{"Zip Code", "Postal Code", "Zip"}},
	{sectionMerchant, types.MerchantPhone, []string{"Phone Number", "Phone"}},
}

var tsysFields = joinFields(
	[]fieldSpec{
		{sectionMerchant, types.MerchantID, []string{"Merchant ID", "Merchant Number", "MID"}},
		{sectionMerchant, types.MerchantDBAName, []string{"DBA Name", "Merchant Name", "DBA"}},
	},
	addressFields,
	[]fieldSpec{
		{sectionTerminal, types.TerminalNumber, []string{"Terminal Number", "Terminal #"}},
		{sectionTerminal, types.TerminalID, []string{"Terminal ID", "TID"}},
		{sectionTerminal, types.TerminalStoreNumber, []string{"Store Number", "Store #"}},
		{sectionTerminal, types.TerminalChainNumber, []string{"Chain Number", "Chain"}},
		{sectionTerminal, types.TerminalAgentNumber, []string{"Agent Number", "Agent Bank", "Agent"}},
		{sectionTerminal, types.TerminalBinNumber, []string{"BIN Number", "Acquirer BIN", "BIN"}},
		{sectionTerminal, types.TerminalSICCode, []string{"SIC Code", "MCC", "Category Code", "SIC"}},
		{sectionTerminal, types.TerminalTimeZoneInd, []string{"Time Zone Ind", "Time Zone"}},
	},
)

// tsysParser reads TSYS sheets, where every label precedes its value.
type tsysParser struct {
	x *extractor
}

func newTSYSParser() *tsysParser {
	return &tsysParser{x: newExtractor(vocabulary(tsysFields, networkLabels()), true)}
}

func (p *tsysParser) Dialect() types.Dialect { return types.DialectTSYS }

func (p *tsysParser) Parse(text string) *types.ParsedRecord {
	rec := types.NewParsedRecord(types.DialectTSYS)
	parseForward(rec, text, p.x, tsysFields)
	parseNetworks(rec, text, p.x)
	return finish(rec)
}
