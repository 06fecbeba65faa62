package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"

	"stockservice/internal/stock"
)

// UnknownCompanyName is reported when the profile carried no usable name.
const UnknownCompanyName = "N/A"

// BuildStockRecord merges a quote, a scraped profile and the purchase state of
// symbol into one record. It performs no I/O and never fails.
//
// Rules:
//   - company_code is the uppercased symbol, request_date and status come
//     from the quote, prices are copied 1:1.
//   - An empty company name becomes "N/A".
//   - A missing purchase (ok=false) reads as zero, "Not Purchased".
//   - Competitor order is kept; nil performance and competitors are emitted
//     as empty collections.
func BuildStockRecord(symbol string, quote stock.Quote, profile stock.CompanyProfile, purchase stock.Purchase, ok bool) stock.StockRecord {
	amount := decimal.Zero
	if ok {
		amount = purchase.Amount
	}

	name := strings.TrimSpace(profile.CompanyName)
	if name == "" {
		name = UnknownCompanyName
	}

	performance := profile.Performance
	if performance == nil {
		performance = stock.PerformanceData{}
	}
	competitors := profile.Competitors
	if competitors == nil {
		competitors = []stock.Competitor{}
	}

	return stock.StockRecord{
		Status:          quote.Status,
		PurchasedAmount: amount,
		PurchasedStatus: stock.StatusFor(amount),
		RequestDate:     quote.RequestDate,
		CompanyCode:     strings.ToUpper(strings.TrimSpace(symbol)),
		CompanyName:     name,
		StockValues: stock.StockValues{
			Open:  quote.Open,
			High:  quote.High,
			Low:   quote.Low,
			Close: quote.Close,
		},
		PerformanceData: performance,
		Competitors:     competitors,
	}
}
