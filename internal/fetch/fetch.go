// Package fetch pulls competitor articles from the web and reduces them to the
// plain text the analyzer works on.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 5 << 20
	userAgent       = "Mozilla/5.0 (compatible; contentstudio/1.0)"
)

// Page is the extracted content of a fetched article.
type Page struct {
	URL    string
	Title  string
	Source string // Author or site name, best effort
	Text   string
}

// SourceLabel describes where the page came from, for the analysis form.
func (p *Page) SourceLabel() string {
	switch {
	case p.Source != "" && p.Title != "":
		return fmt.Sprintf("%s (%s)", p.Title, p.Source)
	case p.Title != "":
		return p.Title
	case p.Source != "":
		return p.Source
	default:
		return p.URL
	}
}

// Fetcher downloads pages over HTTP.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher creates a Fetcher. A nil client gets one with a 30s timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Fetcher{client: client, maxBytes: defaultMaxBytes}
}

// Fetch downloads rawURL and extracts its article text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	parsed, err := url.ParseRequestURI(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL %s: status code %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", rawURL, err)
	}

	return Extract(string(body), parsed.String())
}

var (
	blankRun   = regexp.MustCompile(`\n{3,}`)
	spaceRun   = regexp.MustCompile(`[ \t\x{00A0}]+`)
	textBlocks = "p, h1, h2, h3, h4, h5, h6, li, blockquote, pre"
)

// mainContentSelectors are tried in order; the first that yields text wins.
var mainContentSelectors = []string{
	"article", "main", ".main-content", ".entry-content", ".post-content", ".post-body", ".article-body",
	"[role='main']",
	".content", "#content",
}

// ErrNoText is returned when a page has no extractable article text.
var ErrNoText = errors.New("no article text found on page")

// Extract reduces an HTML document to its title, source and article text.
func Extract(htmlContent, sourceURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", sourceURL, err)
	}

	page := &Page{
		URL:    sourceURL,
		Title:  extractTitle(doc),
		Source: extractSource(doc),
	}

	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript, .sidebar, #sidebar, .ad, .advertisement, .popup, .modal, .cookie-banner").Remove()

	var text string
	for _, selector := range mainContentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			if text = blockText(sel.First()); text != "" {
				break
			}
		}
	}
	if text == "" {
		text = blockText(doc.Find("body"))
	}
	if text == "" {
		return nil, ErrNoText
	}

	page.Text = text
	return page, nil
}

// blockText joins the text of block elements with blank lines in between.
func blockText(sel *goquery.Selection) string {
	var parts []string
	sel.Find(textBlocks).Each(func(_ int, item *goquery.Selection) {
		// Nested blocks (a p inside an li) are picked up through their parent.
		if item.ParentsFiltered(textBlocks).Length() > 0 {
			return
		}
		t := strings.TrimSpace(spaceRun.ReplaceAllString(item.Text(), " "))
		if t != "" {
			parts = append(parts, t)
		}
	})
	joined := strings.Join(parts, "\n\n")
	return strings.TrimSpace(blankRun.ReplaceAllString(joined, "\n\n"))
}

func extractTitle(doc *goquery.Document) string {
	if ogTitle, _ := doc.Find("meta[property='og:title']").Attr("content"); strings.TrimSpace(ogTitle) != "" {
		return strings.TrimSpace(ogTitle)
	}
	if title := strings.TrimSpace(doc.Find("head title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func extractSource(doc *goquery.Document) string {
	for _, sel := range []string{"meta[name='author']", "meta[property='article:author']", "meta[property='og:site_name']"} {
		if v, _ := doc.Find(sel).Attr("content"); strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
