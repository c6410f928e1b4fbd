package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
)

// NormalizeURL strips the fragment and trailing slashes from the path
// (keeping a bare "/" for the root).
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	if p := strings.TrimRight(u.Path, "/"); p != "" {
		u.Path = p
	} else {
		u.Path = "/"
	}
	return u.String()
}

// sameScopeAs reports whether candidate stays within the crawl scope
// of base: same scheme, same host, and a path under base's path
// prefix. A base at the site root scopes the whole host.
func sameScopeAs(base, candidate *url.URL) bool {
	if base.Host != candidate.Host || base.Scheme != candidate.Scheme {
		return false
	}
	basePath := strings.TrimRight(base.Path, "/")
	if basePath == "" {
		return true
	}
	return strings.HasPrefix(strings.TrimRight(candidate.Path, "/"), basePath)
}

// ExtractLinks collects every in-scope anchor from rendered HTML,
// normalized, deduplicated and sorted. The base URL itself is excluded.
func ExtractLinks(html, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	seen := map[string]bool{}
	normalizedBase := NormalizeURL(baseURL)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" ||
			strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if !sameScopeAs(base, resolved) {
			return
		}
		normalized := NormalizeURL(resolved.String())
		if normalized != normalizedBase {
			seen[normalized] = true
		}
	})

	links := make([]string, 0, len(seen))
	for l := range seen {
		links = append(links, l)
	}
	sort.Strings(links)
	return links, nil
}

// DiscoverLinks renders pageURL and returns up to maxPages in-scope
// links found on it, excluding the page itself.
func (f *Fetcher) DiscoverLinks(ctx context.Context, pageURL string, maxPages int) ([]string, error) {
	browser := rod.New().Context(ctx).Timeout(f.Timeout)
	if f.BrowserURL != "" {
		browser = browser.ControlURL(f.BrowserURL)
	}
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("browser connect: %w", err)
	}
	defer browser.MustClose()

	_, html, err := f.renderPage(browser, pageURL)
	if err != nil {
		return nil, err
	}

	links, err := ExtractLinks(html, pageURL)
	if err != nil {
		return nil, err
	}
	if maxPages > 0 && len(links) > maxPages {
		links = links[:maxPages]
	}
	return links, nil
}
