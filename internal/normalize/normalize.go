// Package normalize converts the textual figures found on upstream pages
// (market cap shorthand, percentages, period labels) into canonical values.
package normalize

import (
	"errors"
	"regexp"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"stockservice/internal/stock"
)

// marketCapPattern splits "¥1.5B" into a currency run, a number and a suffix.
// The currency run is a symbol (anything that is neither a word character nor
// space, so multi-byte ¥, ₩ and ₠ match whole), optionally preceded by an
// uppercase country prefix as in "HK$". Dots and signs never count as
// currency, so "$.5B" and "-$1.5B" are rejected instead of misread.
var marketCapPattern = regexp.MustCompile(`^((?:[A-Z]{0,3}[^\w\s.+-]+)?)\s*(\d[\d,]*(?:\.\d+)?)\s*([KMBTkmbt]?)$`)

var suffixExponent = map[string]int32{
	"":  0,
	"K": 3,
	"M": 6,
	"B": 9,
	"T": 12,
}

// ParseMarketCap parses strings such as "$1.5B", "₩500K" or "2,300" into a
// currency and a decimal magnitude. A missing currency symbol yields a valid
// empty currency.
func ParseMarketCap(text string) (stock.MarketCap, error) {
	s := strings.TrimSpace(text)
	m := marketCapPattern.FindStringSubmatch(s)
	if m == nil {
		return stock.NullMarketCap(), &stock.ParseError{Kind: "market cap", Input: text}
	}

	value, err := decimal.NewFromString(strings.ReplaceAll(m[2], ",", ""))
	if err != nil {
		return stock.NullMarketCap(), &stock.ParseError{Kind: "market cap", Input: text, Err: err}
	}
	exp := suffixExponent[strings.ToUpper(m[3])]
	value = value.Shift(exp)

	return stock.MarketCap{
		Currency: null.StringFrom(m[1]),
		Value:    decimal.NewNullDecimal(value),
	}, nil
}

// ParsePercentage converts "5.33%" to 0.0533. The trailing percent sign is
// optional.
func ParsePercentage(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return 0, &stock.ParseError{Kind: "percentage", Input: text, Err: errors.New("empty")}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &stock.ParseError{Kind: "percentage", Input: text, Err: err}
	}
	f, _ := d.Shift(-2).Float64()
	return f, nil
}

var knownPeriods = map[string]string{
	"5 day":   stock.PeriodFiveDays,
	"1 month": stock.PeriodOneMonth,
	"3 month": stock.PeriodThreeMonths,
	"ytd":     stock.PeriodYearToDate,
	"1 year":  stock.PeriodOneYear,
}

// NormalizePeriodLabel maps a performance period label to its canonical key.
// Unknown labels are lowercased with spaces replaced by underscores.
func NormalizePeriodLabel(label string) string {
	l := strings.ToLower(strings.Join(strings.Fields(label), " "))
	if key, ok := knownPeriods[l]; ok {
		return key
	}
	return strings.ReplaceAll(l, " ", "_")
}
