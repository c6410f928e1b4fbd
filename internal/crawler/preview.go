package crawler

import (
	"context"
	"fmt"
	"net/url"

	htmlmd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/go-rod/rod"
)

// Preview is an ad-hoc rendition of a page for inspection before (or
// without) adding it to the index. Nothing here is persisted.
type Preview struct {
	URL         string  `json:"url"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Markdown    string  `json:"markdown"`
	HTTPStatus  *int    `json:"http_status"`
}

// FetchPreview renders a page and converts it to markdown.
func (f *Fetcher) FetchPreview(ctx context.Context, pageURL string) (*Preview, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	browser := rod.New().Context(ctx).Timeout(f.Timeout)
	if f.BrowserURL != "" {
		browser = browser.ControlURL(f.BrowserURL)
	}
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("browser connect: %w", err)
	}
	defer browser.MustClose()

	status, html, err := f.renderPage(browser, pageURL)
	if err != nil {
		return nil, err
	}

	converter := htmlmd.NewConverter(u.Hostname(), true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	p := &Preview{URL: pageURL, Markdown: markdown}
	if status != 0 {
		p.HTTPStatus = &status
	}
	p.Title, p.Description, _ = Extract(html)
	return p, nil
}
