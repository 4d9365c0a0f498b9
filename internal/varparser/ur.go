package varparser

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

var urFields = joinFields(
	[]fieldSpec{
		{sectionMerchant, types.MerchantID, []string{"Merchant Number", "Merchant ID", "MID"}},
		{sectionMerchant, types.MerchantDBAName, []string{"DBA Name", "Merchant Name", "Business Name"}},
	},
	addressFields,
	[]fieldSpec{
		{sectionTerminal, types.TerminalNumber, []string{"Terminal Number", "Terminal #"}},
		{sectionTerminal, types.TerminalID, []string{"Terminal ID", "TID"}},
		{sectionTerminal, types.TerminalStoreNumber, []string{"Store Number"}},
		{sectionTerminal, types.TerminalChainNumber, []string{"Chain Number"}},
		{sectionTerminal, types.TerminalAgentNumber, []string{"Agent Number"}},
		{sectionTerminal, types.TerminalBinNumber, []string{"BIN Number", "BIN"}},
		{sectionTerminal, types.TerminalSICCode, []string{"MCC", "SIC Code", "Category Code"}},
		{sectionTerminal, types.TerminalTimeZoneInd, []string{"Time Zone Ind", "Time Zone"}},
	},
)

// urStopLabels keep table values from running into the free-text UR fields.
var urStopLabels = []string{
	"Authentication Code",
	"Sharing Group",
	"ABA Routing Number",
	"ABA Number",
	"Settlement Agent",
	"Reimbursement Attribute",
}

// urPatterns extract the UR debit routing fields from free text. Each one is
// anchored on a colon, an en dash or a hyphen after its label.
var urPatterns = []struct {
	key string
	re  *regexp.Regexp
}{
	{types.URAuthenticationCode, regexp.MustCompile(`(?i)authentication\s+code\s*[:–-]\s*([A-Z0-9]+)`)},
	{types.URSharingGroup, regexp.MustCompile(`(?i)sharing\s+group\s*[:–-]\s*([A-Z0-9]+)`)},
	{types.URABANumber, regexp.MustCompile(`(?i)\bABA(?:\s+(?:routing\s+)?(?:number|#))?\s*[:–-]\s*(\d{9})`)},
	{types.URSettlementAgent, regexp.MustCompile(`(?i)settlement\s+agent(?:\s+(?:code|number))?\s*[:–-]\s*([A-Z0-9]+)`)},
	{types.URReimbursementAttribute, regexp.MustCompile(`(?i)reimbursement\s+attribute\s*[:–-]\s*([A-Z0-9])\b`)},
}

// urParser reads UR sheets: a pipe table for merchant and terminal data and
// free-text lines for the debit routing fields.
type urParser struct {
	x *extractor
}

func newURParser() *urParser {
	return &urParser{x: newExtractor(vocabulary(urFields, networkLabels(), urStopLabels), true)}
}

func (p *urParser) Dialect() types.Dialect { return types.DialectUR }

func (p *urParser) Parse(text string) *types.ParsedRecord {
	rec := types.NewParsedRecord(types.DialectUR)
	rec.UR = make(map[string]string)

	parseForward(rec, text, p.x, urFields)
	parseNetworks(rec, text, p.x)

	for _, pat := range urPatterns {
		if m := pat.re.FindStringSubmatch(text); m != nil {
			rec.UR[pat.key] = strings.ToUpper(m[1])
		}
	}
	return finish(rec)
}
