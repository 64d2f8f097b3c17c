// Package normalize implements the pure-function normalizers mapping raw
// scraped strings to the canonical Listing representation: price, location,
// and amenities.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// HRKToEURRate is the legacy kuna-to-euro fixed conversion rate. HRK has
// been retired since 2023; the rate is a literal constant, not a config
// knob.
const HRKToEURRate = 7.5345

var numericToken = regexp.MustCompile(`[\d.,]+`)

var monthlyMarkers = []string{"/mj", "mjesec", "mj.", "najam", "monthly"}

var hrkMarkers = []string{"kn", "hrk"}

// PriceResult is the output of the price normalizer.
type PriceResult struct {
	PriceEUR  int
	Currency  string
	IsMonthly bool
}

// Price normalizes a raw price string into canonical EUR, given the listing
// type (rent listings can carry a monthly-rate marker).
func Price(raw string, listingType string) PriceResult {
	lower := strings.ToLower(raw)

	token := numericToken.FindString(raw)
	amount := 0.0
	if token != "" {
		amount = parseNumericToken(token)
	}

	isHRK := containsAny(lower, hrkMarkers)
	if isHRK {
		amount = amount / HRKToEURRate
	}

	isMonthly := listingType == "rent" && containsAny(diacriticFold(lower), monthlyMarkers)

	return PriceResult{
		PriceEUR:  int(math.Round(amount)),
		Currency:  "EUR",
		IsMonthly: isMonthly,
	}
}

// parseNumericToken disambiguates thousands vs. decimal separator by
// position:
//   - last comma after last dot  -> European (dot=thousands, comma=decimal)
//   - last dot after last comma, with exactly 3 digits trailing the dot and
//     no further comma -> European thousands (dot used as thousands sep)
//   - otherwise -> US (comma=thousands, dot=decimal)
func parseNumericToken(token string) float64 {
	lastComma := strings.LastIndex(token, ",")
	lastDot := strings.LastIndex(token, ".")

	var cleaned string
	switch {
	case lastComma == -1 && lastDot == -1:
		cleaned = token
	case lastComma > lastDot:
		// European: dot is thousands, comma is decimal.
		cleaned = strings.ReplaceAll(token, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case lastDot > lastComma && lastComma == -1 && isThreeDigitThousands(token, lastDot):
		// European thousands via dot, no decimal part.
		cleaned = strings.ReplaceAll(token, ".", "")
	default:
		// US: comma is thousands, dot is decimal.
		cleaned = strings.ReplaceAll(token, ",", "")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// isThreeDigitThousands reports whether exactly three digits follow dotIdx
// and the token has no further dot after it, e.g. "1.500" but not "1.5".
func isThreeDigitThousands(token string, dotIdx int) bool {
	rest := token[dotIdx+1:]
	return len(rest) == 3 && !strings.Contains(rest, ".")
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
