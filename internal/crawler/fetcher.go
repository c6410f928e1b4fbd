// Package crawler renders pages in a headless browser and extracts
// the title, description and readable content that feed the index.
package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"linkdex/internal/config"
)

// Result is the outcome of fetching one page. A failed fetch still
// returns a Result with Error set so the failure can be recorded on
// the link row.
type Result struct {
	URL         string
	Title       *string
	Description *string
	Content     *string
	HTTPStatus  *int
	Error       *string
}

// Fetcher drives a headless browser (local or remote via BrowserURL)
// to render JS-heavy pages before extraction.
type Fetcher struct {
	UserAgent  string
	BrowserURL string
	Timeout    time.Duration
	Settle     time.Duration
}

// NewFetcher builds a Fetcher from crawler config.
func NewFetcher(cfg config.CrawlerConfig) *Fetcher {
	ua := cfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	settle := time.Duration(cfg.SettleMs) * time.Millisecond
	if settle < 0 {
		settle = 0
	}
	return &Fetcher{
		UserAgent:  ua,
		BrowserURL: cfg.BrowserURL,
		Timeout:    timeout,
		Settle:     settle,
	}
}

// Fetch renders url and extracts its content. An https URL that fails
// to load is retried once over plain http before giving up.
func (f *Fetcher) Fetch(ctx context.Context, url string) *Result {
	result := &Result{URL: url}

	attempts := []string{url}
	if strings.HasPrefix(url, "https://") {
		attempts = append(attempts, "http://"+strings.TrimPrefix(url, "https://"))
	}

	browser := rod.New().Context(ctx).Timeout(f.Timeout * time.Duration(len(attempts)))
	if f.BrowserURL != "" {
		browser = browser.ControlURL(f.BrowserURL)
	}
	if err := browser.Connect(); err != nil {
		msg := fmt.Sprintf("browser connect: %v", err)
		result.Error = &msg
		return result
	}
	defer browser.MustClose()

	var lastErr error
	for _, attempt := range attempts {
		status, html, err := f.renderPage(browser, attempt)
		if err != nil {
			lastErr = err
			continue
		}
		if status != 0 {
			result.HTTPStatus = &status
		}
		result.Title, result.Description, result.Content = Extract(html)
		lastErr = nil
		break
	}
	if lastErr != nil {
		msg := lastErr.Error()
		result.Error = &msg
	}
	return result
}

// renderPage loads one URL in a fresh tab and returns the document
// HTTP status and rendered HTML.
func (f *Fetcher) renderPage(browser *rod.Browser, url string) (status int, html string, err error) {
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return 0, "", fmt.Errorf("open page: %w", err)
	}
	defer page.MustClose()

	page = page.Timeout(f.Timeout)

	if err := (proto.NetworkSetUserAgentOverride{UserAgent: f.UserAgent}).Call(page); err != nil {
		return 0, "", fmt.Errorf("set user agent: %w", err)
	}

	// Capture the main document response status; subresource events
	// are skipped.
	waitStatus := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type == proto.NetworkResourceTypeDocument {
			status = int(e.Response.Status)
			return true
		}
		return false
	})

	// DOMContentLoaded is enough to read the document; waiting for the
	// full load event stalls on pages with slow subresources.
	waitDOM := page.WaitEvent(&proto.PageDomContentEventFired{})

	if err := page.Navigate(url); err != nil {
		return 0, "", fmt.Errorf("navigate %s: %w", url, err)
	}
	waitDOM()
	waitStatus()

	// Let dynamic content settle before reading the DOM.
	if f.Settle > 0 {
		time.Sleep(f.Settle)
	}

	html, err = page.HTML()
	if err != nil {
		return 0, "", fmt.Errorf("read html %s: %w", url, err)
	}
	return status, html, nil
}
