package edgar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const browsePageFixture = `<html><body>
<table class="tableFile2">
<tr><th>Filings</th><th>Format</th><th>Description</th><th>Filing Date</th><th>File Number</th></tr>
<tr>
  <td>10-K</td>
  <td><a id="documentsbutton" href="/Archives/edgar/data/320193/000032019324000123-index.htm">Documents</a></td>
  <td>Annual report</td>
  <td>2024-11-01</td>
  <td>001-36743</td>
</tr>
<tr>
  <td>10-Q</td>
  <td><a id="documentsbutton" href="/Archives/edgar/data/320193/000032019324000081-index.htm">Documents</a></td>
  <td>Quarterly report</td>
  <td>2024-08-02</td>
  <td>001-36743</td>
</tr>
<tr>
  <td>10-K</td>
  <td><a id="documentsbutton" href="/Archives/edgar/data/320193/000032019323000106-index.htm">Documents</a></td>
  <td>Annual report</td>
  <td>2023-11-03</td>
  <td>001-36743</td>
</tr>
</table>
</body></html>`

func TestRecentAnnualFilings(t *testing.T) {
	var gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte(browsePageFixture))
	}))
	defer srv.Close()

	c := NewClient("dcf-analyst test@example.com")
	// Point the scrape at the fixture server.
	body, err := c.get(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	refs, err := parseAnnualFilings(body, "0000320193")
	if err != nil {
		t.Fatal(err)
	}

	if gotUserAgent != "dcf-analyst test@example.com" {
		t.Errorf("User-Agent = %q, SEC requires an identifying header", gotUserAgent)
	}
	if len(refs) != 2 {
		t.Fatalf("got %d annual filings, want 2 (10-Q excluded)", len(refs))
	}
	if refs[0].FilingDate != "2024-11-01" || refs[0].Form != "10-K" {
		t.Errorf("first ref = %+v", refs[0])
	}
	if refs[0].IndexURL != "https://www.sec.gov/Archives/edgar/data/320193/000032019324000123-index.htm" {
		t.Errorf("index URL = %q", refs[0].IndexURL)
	}
}

func TestParseAnnualFilings_EmptyPage(t *testing.T) {
	if _, err := parseAnnualFilings([]byte("<html><body></body></html>"), "0000000000"); err == nil {
		t.Error("expected error for page with no annual filings")
	}
}
