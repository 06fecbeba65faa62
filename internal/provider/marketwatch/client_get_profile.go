package marketwatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"stockservice/internal/httpx"
	"stockservice/internal/logging"
	"stockservice/internal/normalize"
	"stockservice/internal/stock"
)

// Scrape fields reported in ScrapeStructureError.
const (
	FieldCompanyName = "company_name"
	FieldPerformance = "performance"
	FieldCompetitors = "competitors"
)

const (
	performanceHeading = "Performance"
	competitorsLabel   = "Competitors data table"
)

// valueClass matches the class list of the list item holding a performance
// figure ("content__item value ignore-color").
var valueClass = regexp.MustCompile(`\bvalue\b`)

// GetCompanyProfile fetches the profile page of symbol and extracts the
// company name, the performance table and the competitors table.
//
// A missing company name fails the whole call. Missing performance or
// competitor sections yield empty results; sections that exist but cannot be
// read fail with *stock.ScrapeStructureError.
func (c *MarketWatchClient) GetCompanyProfile(ctx context.Context, symbol string) (stock.CompanyProfile, error) {
	logger := c.logger.With().Str("symbol", symbol).Logger()

	endpoint := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(strings.ToLower(symbol)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return stock.CompanyProfile{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		terr := httpx.TransportError(stock.UpstreamProfile, err)
		logging.LogAPICall(logger, stock.UpstreamProfile, c.baseURL, time.Since(start), err)
		logger.Error().Int("status", terr.Status).Err(err).Msg("profile request failed")
		return stock.CompanyProfile{}, terr
	}
	defer res.Body.Close()

	if !httpx.IsSuccess(res.StatusCode) {
		serr := httpx.StatusError(stock.UpstreamProfile, res)
		logging.LogAPICall(logger, stock.UpstreamProfile, c.baseURL, time.Since(start), serr)
		logger.Error().Int("status", serr.Status).Str("body", serr.Body).Msg("profile request failed")
		return stock.CompanyProfile{}, serr
	}

	profile, err := ParseProfile(res.Body)
	if err != nil {
		if httpx.IsTimeout(err) {
			return stock.CompanyProfile{}, httpx.TransportError(stock.UpstreamProfile, err)
		}
		logger.Error().Int("status", res.StatusCode).Err(err).Msg("profile page unreadable")
		return stock.CompanyProfile{}, err
	}

	logging.LogAPICall(logger, stock.UpstreamProfile, c.baseURL, time.Since(start), nil)
	logger.Info().
		Int("performance_periods", len(profile.Performance)).
		Int("competitors", len(profile.Competitors)).
		Msg("profile scraped")
	return profile, nil
}

// ParseProfile extracts a CompanyProfile from a profile page.
func ParseProfile(r io.Reader) (stock.CompanyProfile, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		if httpx.IsTimeout(err) {
			return stock.CompanyProfile{}, err
		}
		return stock.CompanyProfile{}, &stock.ScrapeStructureError{Field: "document", Err: err}
	}

	name := text(doc.Find("h1.company__name").First())
	if name == "" {
		return stock.CompanyProfile{}, &stock.ScrapeStructureError{Field: FieldCompanyName}
	}

	performance, err := parsePerformance(doc.Selection)
	if err != nil {
		return stock.CompanyProfile{}, err
	}

	competitors, err := parseCompetitors(doc.Selection)
	if err != nil {
		return stock.CompanyProfile{}, err
	}

	return stock.CompanyProfile{
		CompanyName: name,
		Performance: performance,
		Competitors: competitors,
	}, nil
}

// performanceSection locates the block holding the performance table.
//
// The page renders the section as
//
//	<div class="element element--table performance">
//	  <header class="header header--secondary">
//	    <h2 class="title"><span>Performance</span></h2>
//	  </header>
//	  <table class="table table--primary">...</table>
//	</div>
//
// so the enclosing block is three levels above the first span whose text
// contains "Performance". An empty selection means the section is absent.
func performanceSection(root *goquery.Selection) *goquery.Selection {
	heading := root.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), performanceHeading)
	}).First()
	if heading.Length() == 0 {
		return heading
	}
	return heading.Parent().Parent().Parent()
}

func parsePerformance(root *goquery.Selection) (stock.PerformanceData, error) {
	performance := stock.PerformanceData{}

	section := performanceSection(root)
	if section.Length() == 0 {
		return performance, nil
	}

	var rowErr error
	section.Find("tr.table__row").EachWithBreak(func(i int, row *goquery.Selection) bool {
		label := text(row.Find("td.table__cell").First())
		if label == "" {
			rowErr = &stock.ScrapeStructureError{Field: FieldPerformance, Err: fmt.Errorf("row %d: missing period label", i)}
			return false
		}

		valueItem := row.Find("li").FilterFunction(func(_ int, li *goquery.Selection) bool {
			class, _ := li.Attr("class")
			return valueClass.MatchString(class)
		}).First()
		if valueItem.Length() == 0 {
			rowErr = &stock.ScrapeStructureError{Field: FieldPerformance, Err: fmt.Errorf("row %d (%s): missing value", i, label)}
			return false
		}

		ratio, err := normalize.ParsePercentage(text(valueItem))
		if err != nil {
			rowErr = &stock.ScrapeStructureError{Field: FieldPerformance, Err: fmt.Errorf("row %d (%s): %w", i, label, err)}
			return false
		}
		performance[normalize.NormalizePeriodLabel(label)] = ratio
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return performance, nil
}

func parseCompetitors(root *goquery.Selection) ([]stock.Competitor, error) {
	competitors := []stock.Competitor{}

	table := root.Find(fmt.Sprintf(`table[aria-label=%q]`, competitorsLabel)).First()
	if table.Length() == 0 {
		return competitors, nil
	}

	var rowErr error
	table.Find("tbody tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		nameCell := row.Find("td.w50").First()
		capCell := row.Find("td.number").First()
		changeCell := row.Find("td.w25 bg-quote").First()
		if nameCell.Length() == 0 || capCell.Length() == 0 {
			rowErr = &stock.ScrapeStructureError{Field: FieldCompetitors, Err: fmt.Errorf("row %d: missing name or market cap cell", i)}
			return false
		}
		if changeCell.Length() == 0 {
			rowErr = &stock.ScrapeStructureError{Field: FieldCompetitors, Err: fmt.Errorf("row %d: missing change indicator", i)}
			return false
		}

		name := text(nameCell)
		if name == "" {
			rowErr = &stock.ScrapeStructureError{Field: FieldCompetitors, Err: fmt.Errorf("row %d: empty name", i)}
			return false
		}

		// Unparsable market caps are kept as null rather than dropping the row.
		marketCap, err := normalize.ParseMarketCap(text(capCell))
		if err != nil {
			marketCap = stock.NullMarketCap()
		}

		competitors = append(competitors, stock.Competitor{
			Name:      name,
			Change:    text(changeCell),
			MarketCap: marketCap,
		})
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return competitors, nil
}

// text returns the element text with whitespace runs collapsed.
func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
