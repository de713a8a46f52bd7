package edgar

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FilingRef points at one filing on EDGAR, recorded with stored runs so a
// reviewer can trace every snapshot back to its source documents.
type FilingRef struct {
	Form       string `json:"form"`
	FilingDate string `json:"filing_date"`
	IndexURL   string `json:"index_url"`
}

// RecentAnnualFilings scrapes the company browse page for the most recent
// 10-K rows. The browse endpoint only serves HTML, hence the goquery
// traversal instead of a JSON decode.
func (c *Client) RecentAnnualFilings(ctx context.Context, cik string) ([]FilingRef, error) {
	body, err := c.get(ctx, fmt.Sprintf(browseFilingsURL, cik))
	if err != nil {
		return nil, err
	}
	return parseAnnualFilings(body, cik)
}

func parseAnnualFilings(body []byte, cik string) ([]FilingRef, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing filing index for CIK %s: %w", cik, err)
	}

	var refs []FilingRef
	doc.Find("table.tableFile2 tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		form := strings.TrimSpace(cells.Eq(0).Text())
		if form != "10-K" && form != "10-K/A" {
			return
		}

		href, ok := cells.Eq(1).Find("a#documentsbutton").Attr("href")
		if !ok {
			return
		}
		refs = append(refs, FilingRef{
			Form:       form,
			FilingDate: strings.TrimSpace(cells.Eq(3).Text()),
			IndexURL:   "https://www.sec.gov" + href,
		})
	})

	if len(refs) == 0 {
		return nil, fmt.Errorf("no annual filings found on index page for CIK %s", cik)
	}
	return refs, nil
}
