package crawler

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MaxContentChars caps extracted page text. Longer content is cut and
// marked with a trailing ellipsis.
const MaxContentChars = 50000

// contentSelectors is tried in order; the first match wins, falling
// back to body.
var contentSelectors = []string{
	"main",
	"article",
	"[role=main]",
	".content",
	".post-content",
	".article-content",
	"#content",
	".markdown-body",
	".prose",
}

// Extract pulls title, description and readable content out of
// rendered HTML. Each return is nil when nothing usable was found.
func Extract(html string) (title, description, content *string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, nil
	}

	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		title = &t
	} else if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		title = &h1
	}

	if d := strings.TrimSpace(doc.Find("meta[name=description]").AttrOr("content", "")); d != "" {
		description = &d
	} else if og := strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", "")); og != "" {
		description = &og
	}

	var text string
	for _, sel := range contentSelectors {
		if el := doc.Find(sel).First(); el.Length() > 0 {
			text = innerText(el)
			break
		}
	}
	if text == "" {
		text = innerText(doc.Find("body").First())
	}
	if text != "" {
		if len(text) > MaxContentChars {
			// Back up to a rune boundary so the cut never produces
			// invalid UTF-8.
			cut := MaxContentChars
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			text = text[:cut] + "..."
		}
		content = &text
	}
	return title, description, content
}

// innerText approximates a browser's visible-text reading: scripts and
// styles dropped, whitespace runs collapsed.
func innerText(sel *goquery.Selection) string {
	sel.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(sel.Text()), " ")
}
