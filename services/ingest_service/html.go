package ingest_service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// WebPage is the text extracted from a bare-act or commentary web page.
type WebPage struct {
	Title string
	Text  string
}

// FetchWebPage downloads url and extracts its readable text: the document
// title plus the text of heading and paragraph elements, with script, style
// and navigation chrome removed.
func FetchWebPage(ctx context.Context, httpClient *http.Client, url string) (*WebPage, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page fetch returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())

	var parts []string
	doc.Find("h1, h2, h3, h4, p, li").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			parts = append(parts, text)
		}
	})

	text := strings.Join(parts, "\n")
	if text == "" {
		return nil, fmt.Errorf("no readable text found at %s", url)
	}

	return &WebPage{
		Title: title,
		Text:  text,
	}, nil
}
