package mapper

import (
	"strconv"
	"strings"
)

// Timezone names written to Merchant_Time_Zone.
const (
	TimeZoneEastern  = "Eastern"
	TimeZoneCentral  = "Central"
	TimeZoneMountain = "Mountain"
	TimeZonePacific  = "Pacific"
)

// zipRange maps an inclusive range of 3-digit ZIP prefixes to a timezone.
type zipRange struct {
	lo, hi int
	zone   string
}

// zipRanges is checked in order, so narrower ranges that cut across a state
// line come before the state-wide range. Alaska, Hawaii and Guam have no
// zone of their own in the provisioning system and fall back to Pacific.
var zipRanges = []zipRange{
	// Exceptions inside otherwise single-zone states.
	{324, 325, TimeZoneCentral},  // Florida panhandle
	{370, 372, TimeZoneCentral},  // middle Tennessee
	{380, 385, TimeZoneCentral},  // west Tennessee
	{420, 424, TimeZoneCentral},  // west Kentucky
	{463, 464, TimeZoneCentral},  // northwest Indiana
	{476, 477, TimeZoneCentral},  // southwest Indiana
	{577, 577, TimeZoneMountain}, // western South Dakota
	{690, 693, TimeZoneMountain}, // western Nebraska
	{798, 799, TimeZoneMountain}, // El Paso
	{838, 838, TimeZonePacific},  // northern Idaho

	// Alaska, Hawaii and Guam.
	{995, 999, TimeZonePacific},
	{967, 968, TimeZonePacific},
	{969, 969, TimeZonePacific},

	{5, 349, TimeZoneEastern},
	{350, 369, TimeZoneCentral},
	{373, 379, TimeZoneEastern},
	{386, 397, TimeZoneCentral},
	{398, 399, TimeZoneEastern},
	{400, 499, TimeZoneEastern},
	{500, 588, TimeZoneCentral},
	{590, 599, TimeZoneMountain},
	{600, 799, TimeZoneCentral},
	{800, 884, TimeZoneMountain},
	{889, 898, TimeZonePacific},
	{900, 994, TimeZonePacific},
}

// indicatorZones maps the numeric time zone indicator printed on VAR sheets.
var indicatorZones = map[string]string{
	"705": TimeZoneEastern,
	"706": TimeZoneCentral,
	"707": TimeZoneMountain,
	"708": TimeZonePacific,
}

// ZoneForZip returns the timezone for a US ZIP code. Only the leading
// digits are used, so ZIP+4 values work. The 3-digit prefix table is tried
// first and the first digit decides when no range matches. Values that do
// not start with a digit return "".
func ZoneForZip(zip string) string {
	digits := leadingDigits(strings.TrimSpace(zip))
	if digits == "" {
		return ""
	}

	if len(digits) >= 3 {
		prefix, _ := strconv.Atoi(digits[:3])
		for _, r := range zipRanges {
			if prefix >= r.lo && prefix <= r.hi {
				return r.zone
			}
		}
	}

	switch digits[0] {
	case '0', '1', '2', '3', '4':
		return TimeZoneEastern
	case '5', '6', '7':
		return TimeZoneCentral
	case '8':
		return TimeZoneMountain
	case '9':
		return TimeZonePacific
	}
	return ""
}

// ZoneForIndicator maps a 705-708 indicator; anything else returns "".
func ZoneForIndicator(ind string) string {
	return indicatorZones[strings.TrimSpace(ind)]
}

// ResolveTimeZone prefers the ZIP code and falls back to the indicator.
func ResolveTimeZone(zip, indicator string) string {
	if zone := ZoneForZip(zip); zone != "" {
		return zone
	}
	return ZoneForIndicator(indicator)
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
