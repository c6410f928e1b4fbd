package store

import "testing"

func strPtr(s string) *string { return &s }

func TestSearchTextReplacesSeparators(t *testing.T) {
	got := SearchText("https://github.com/foo-bar", nil, nil, nil, nil)
	want := "https   github com foo bar    "
	if got != want {
		t.Fatalf("SearchText = %q, want %q", got, want)
	}
}

func TestSearchTextJoinsAllFields(t *testing.T) {
	got := SearchText("http://a.io",
		strPtr("My_Title"),
		strPtr("desc:here"),
		strPtr("body"),
		strPtr("note"))
	want := "http   a io My Title desc here body note"
	if got != want {
		t.Fatalf("SearchText = %q, want %q", got, want)
	}
}

func TestSearchTextNilFieldsContributeEmpty(t *testing.T) {
	got := SearchText("x", nil, strPtr("d"), nil, nil)
	if got != "x  d  " {
		t.Fatalf("SearchText = %q", got)
	}
}
