package varparser

import (
	"regexp"

	"github.com/ginjaninja78/VAR-sheet-mapper/internal/types"
)

// Labels that introduce card and debit network data. They are part of every
// forward vocabulary so neighbouring values stop in front of them.
var (
	cardTypeLabels     = []string{"Card Types", "Cards Accepted", "Card Type"}
	amexLabels         = []string{"Amex SE Number", "Amex SE", "Amex Number"}
	discoverLabels     = []string{"Discover Number", "Discover Acct", "Discover SE"}
	debitNetworkLabels = []string{"Debit Network Summary", "Debit Networks", "Debit Network"}
)

func networkLabels() []string {
	var out []string
	for _, l := range [][]string{cardTypeLabels, amexLabels, discoverLabels, debitNetworkLabels} {
		out = append(out, l...)
	}
	return out
}

type network struct {
	name string
	re   *regexp.Regexp
}

var cardNetworks = []network{
	{name: "Visa", re: regexp.MustCompile(`(?i)\bvisa\b`)},
	{name: "Mastercard", re: regexp.MustCompile(`(?i)\b(master\s*card|mc)\b`)},
	{name: "Amex", re: regexp.MustCompile(`(?i)\b(amex|american\s+express)\b`)},
	{name: "Discover", re: regexp.MustCompile(`(?i)\bdiscover\b`)},
	{name: "JCB", re: regexp.MustCompile(`(?i)\bjcb\b`)},
	{name: "Diners", re: regexp.MustCompile(`(?i)\bdiners(\s+club)?\b`)},
	{name: "UnionPay", re: regexp.MustCompile(`(?i)\b(union\s*pay|cup)\b`)},
}

var debitNetworks = []network{
	{name: "Interlink", re: regexp.MustCompile(`(?i)\binterlink\b`)},
	{name: "Maestro", re: regexp.MustCompile(`(?i)\bmaestro\b`)},
	{name: "STAR", re: regexp.MustCompile(`(?i)\bstar\b`)},
	{name: "NYCE", re: regexp.MustCompile(`(?i)\bnyce\b`)},
	{name: "PULSE", re: regexp.MustCompile(`(?i)\bpulse\b`)},
	{name: "ACCEL", re: regexp.MustCompile(`(?i)\baccel\b`)},
	{name: "SHAZAM", re: regexp.MustCompile(`(?i)\bshazam\b`)},
	{name: "Jeanie", re: regexp.MustCompile(`(?i)\bjeanie\b`)},
	{name: "AFFN", re: regexp.MustCompile(`(?i)\baffn\b`)},
	{name: "CU24", re: regexp.MustCompile(`(?i)\bcu\s*24\b`)},
}

// DebitNetworksKey holds the raw debit network summary in ParsedRecord.Debit.
const DebitNetworksKey = "networks"

// parseNetworks fills the sparse card and debit maps of rec.
func parseNetworks(rec *types.ParsedRecord, text string, x *extractor) {
	if list := x.first(text, cardTypeLabels...); list != "" {
		for _, n := range cardNetworks {
			if n.re.MatchString(list) {
				rec.CardTypes[n.name] = "Y"
			}
		}
	}
	if se := x.first(text, amexLabels...); se != "" {
		rec.CardTypes["Amex"] = se
	}
	if acct := x.first(text, discoverLabels...); acct != "" {
		rec.CardTypes["Discover"] = acct
	}

	summary := x.first(text, debitNetworkLabels...)
	if summary == "" {
		return
	}
	rec.Debit[DebitNetworksKey] = summary
	for _, n := range debitNetworks {
		if n.re.MatchString(summary) {
			rec.Debit[n.name] = "Y"
		}
	}
}
