package stock

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day, serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// PreviousTradingDay returns the last weekday strictly before now (UTC).
// Exchange holidays are not taken into account.
func PreviousTradingDay(now time.Time) Date {
	d := NewDate(now.UTC()).AddDate(0, 0, -1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return Date{d}
}

// Quote is the open/close snapshot for one symbol on one date.
type Quote struct {
	Status      string   `json:"status"`
	Symbol      string   `json:"symbol"`
	RequestDate Date     `json:"request_date"`
	Open        float64  `json:"open"`
	High        float64  `json:"high"`
	Low         float64  `json:"low"`
	Close       float64  `json:"close"`
	Volume      int64    `json:"volume"`
	PreMarket   *float64 `json:"pre_market"`
	AfterHours  *float64 `json:"after_hours"`
}

// MarketCap is a currency symbol plus a magnitude. Currency and Value are
// either both set or both null.
type MarketCap struct {
	Currency null.String         `json:"currency"`
	Value    decimal.NullDecimal `json:"value"`
}

// NullMarketCap is the value stored when the source text could not be parsed.
func NullMarketCap() MarketCap { return MarketCap{} }

// Valid reports whether the market cap was parsed.
func (m MarketCap) Valid() bool { return m.Value.Valid }

// Competitor is one row of the competitors table, in page order.
type Competitor struct {
	Name      string    `json:"name"`
	Change    string    `json:"change,omitempty"`
	MarketCap MarketCap `json:"market_cap"`
}

// Canonical performance period keys.
const (
	PeriodFiveDays    = "five_days"
	PeriodOneMonth    = "one_month"
	PeriodThreeMonths = "three_months"
	PeriodYearToDate  = "year_to_date"
	PeriodOneYear     = "one_year"
)

// PerformanceData maps a period key to a ratio (0.0533 for "5.33%").
type PerformanceData map[string]float64

// CompanyProfile is what the scrape client extracts from a profile page.
type CompanyProfile struct {
	CompanyName string          `json:"company_name"`
	Performance PerformanceData `json:"performance_data"`
	Competitors []Competitor    `json:"competitors"`
}

// PurchaseStatus tells whether any amount of a stock has been purchased.
type PurchaseStatus string

const (
	Purchased    PurchaseStatus = "Purchased"
	NotPurchased PurchaseStatus = "Not Purchased"
)

// StatusFor derives the purchase status from a cumulative amount.
func StatusFor(amount decimal.Decimal) PurchaseStatus {
	if amount.IsPositive() {
		return Purchased
	}
	return NotPurchased
}

// Purchase is the cumulative purchased amount for a symbol.
type Purchase struct {
	Symbol string          `json:"symbol"`
	Amount decimal.Decimal `json:"amount"`
}

// StockValues are the price fields copied from the quote.
type StockValues struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// StockRecord is the merged response for one symbol. It is not mutated after
// construction; cached copies are shared between readers.
type StockRecord struct {
	Status          string          `json:"status"`
	PurchasedAmount decimal.Decimal `json:"purchased_amount"`
	PurchasedStatus PurchaseStatus  `json:"purchased_status"`
	RequestDate     Date            `json:"request_date"`
	CompanyCode     string          `json:"company_code"`
	CompanyName     string          `json:"company_name"`
	StockValues     StockValues     `json:"stock_values"`
	PerformanceData PerformanceData `json:"performance_data"`
	Competitors     []Competitor    `json:"competitors"`
}

// NormalizeSymbol trims and uppercases a ticker symbol.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", NewValidationError("symbol", symbol, "must not be empty")
	}
	if strings.ContainsAny(s, "/?#% ") {
		return "", NewValidationError("symbol", symbol, "contains invalid characters")
	}
	return s, nil
}

// MaxAmountScale is the number of fractional digits persisted for purchases.
const MaxAmountScale = 4

// ValidateAmount checks a purchase amount: non-negative with at most four
// fractional digits.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return NewValidationError("amount", amount.String(), "must not be negative")
	}
	if !amount.Equal(amount.Truncate(MaxAmountScale)) {
		return NewValidationError("amount", amount.String(), fmt.Sprintf("at most %d decimal places are allowed", MaxAmountScale))
	}
	return nil
}
