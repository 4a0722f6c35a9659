// Package catalog implements the client for the external book catalog.
//
// The catalog is an uncontrolled third-party service returning loose,
// frequently-changing HTML. Every extracted field is treated as optional:
// a record with a missing author is still a record, and an empty result
// page is a successful search.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnavailable indicates the catalog could not be reached or returned a
// response that was not a result page. It is transient: callers may retry
// with backoff. An empty result set is not an error.
var ErrUnavailable = errors.New("catalog: unavailable")

// DefaultTimeout bounds a single search request.
const DefaultTimeout = 20 * time.Second

const userAgent = "Librarian/1.0 (personal library)"

// Record is a single search hit. Produced per request, never persisted.
type Record struct {
	ExternalID string   `json:"external_id"`
	Title      string   `json:"title"`
	Author     string   `json:"author,omitempty"`
	Formats    []string `json:"formats,omitempty"`
}

// Client searches the external catalog.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the request timeout. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured catalog base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

var (
	bookHrefPattern   = regexp.MustCompile(`^/b/(\d+)/?$`)
	authorHrefPattern = regexp.MustCompile(`^/a/\d+/?$`)
	formatHrefPattern = regexp.MustCompile(`^/b/\d+/([a-z0-9.]+)/?$`)
)

// Search queries the catalog and returns the parsed result records.
// An empty slice with a nil error means the catalog answered but found
// nothing. Any transport or decoding failure is reported as ErrUnavailable;
// the client itself never retries.
func (c *Client) Search(ctx context.Context, query string) ([]Record, error) {
	searchURL := fmt.Sprintf("%s/booksearch?ask=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", ErrUnavailable, err)
	}

	return extractRecords(doc), nil
}

// extractRecords walks the result page for book links. The page layout is
// not under our control, so extraction is anchored on link shapes rather
// than on document structure: any list item containing an /b/<id> anchor
// counts as a hit, author and format links are picked up when present.
func extractRecords(doc *goquery.Document) []Record {
	var records []Record
	seen := make(map[string]int)

	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		var rec Record

		li.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			href = strings.TrimSpace(href)

			switch {
			case bookHrefPattern.MatchString(href):
				if rec.ExternalID == "" {
					rec.ExternalID = bookHrefPattern.FindStringSubmatch(href)[1]
					rec.Title = strings.TrimSpace(a.Text())
				}
			case authorHrefPattern.MatchString(href):
				if rec.Author == "" {
					rec.Author = strings.TrimSpace(a.Text())
				}
			case formatHrefPattern.MatchString(href):
				format := formatHrefPattern.FindStringSubmatch(href)[1]
				rec.Formats = appendFormat(rec.Formats, format)
			}
		})

		if rec.ExternalID == "" {
			return
		}

		// The same book can appear in several result lists; keep the first
		// occurrence and merge any extra format links into it.
		if idx, ok := seen[rec.ExternalID]; ok {
			for _, f := range rec.Formats {
				records[idx].Formats = appendFormat(records[idx].Formats, f)
			}
			return
		}

		seen[rec.ExternalID] = len(records)
		records = append(records, rec)
	})

	if records == nil {
		records = []Record{}
	}
	return records
}

func appendFormat(formats []string, format string) []string {
	for _, f := range formats {
		if f == format {
			return formats
		}
	}
	return append(formats, format)
}
