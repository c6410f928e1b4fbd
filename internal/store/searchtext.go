package store

import "strings"

// searchTextReplacer folds URL and prose punctuation into spaces so
// that "github.com/foo-bar" tokenizes as "github com foo bar". The
// replacement set (`. / - _ :` plus the `//` digraph) is part of the
// on-disk contract: the generated column in the schema applies the
// same substitutions, and the BM25 index is built over the result.
var searchTextReplacer = strings.NewReplacer(
	".", " ",
	"/", " ",
	"-", " ",
	"_", " ",
	":", " ",
)

// SearchText computes the derived search-text projection of a link:
// url, title, description, content and notes joined by single spaces
// (nil fields contribute empty strings) with separator characters
// replaced by spaces. It must stay byte-identical to the search_text
// generated column in the links table.
func SearchText(url string, title, description, content, notes *string) string {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	joined := url + " " + deref(title) + " " + deref(description) + " " +
		deref(content) + " " + deref(notes)

	// `//` is handled by the single-character rules (each `/` becomes a
	// space), matching the SQL REPLACE chain where the final `//` pass
	// finds nothing left to rewrite.
	return searchTextReplacer.Replace(joined)
}
