package params

import (
	"net/url"
	"strings"
	"testing"
)

func TestParseCatalogFilter(t *testing.T) {
	tests := []struct {
		query string
		want  CatalogFilter
	}{
		{"", CatalogFilter{}},
		{"category=Skor", CatalogFilter{Category: "Skor"}},
		{"category=Dam+Mode&search=+kl%C3%A4nning+", CatalogFilter{Category: "Dam Mode", Search: "klänning"}},
		{"Category=Skor", CatalogFilter{}},
	}
	for _, tt := range tests {
		q, err := url.ParseQuery(tt.query)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.query, err)
		}
		if got := ParseCatalogFilter(q); got != tt.want {
			t.Fatalf("ParseCatalogFilter(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
	}
}

func TestParseCatalogFilterCapsSearch(t *testing.T) {
	q := url.Values{"search": {strings.Repeat("å", 300)}}
	f := ParseCatalogFilter(q)
	if n := len([]rune(f.Search)); n != maxSearchLen {
		t.Fatalf("search length = %d, want %d", n, maxSearchLen)
	}
	if f.Search == "" {
		t.Fatal("capped search is empty")
	}
}

func TestSearchPatternEscapesWildcards(t *testing.T) {
	tests := []struct {
		search string
		want   string
	}{
		{"sneakers", `%sneakers%`},
		{"_", `%\_%`},
		{"50%", `%50\%%`},
		{`a\b`, `%a\\b%`},
	}
	for _, tt := range tests {
		if got := (CatalogFilter{Search: tt.search}).SearchPattern(); got != tt.want {
			t.Fatalf("SearchPattern(%q) = %q, want %q", tt.search, got, tt.want)
		}
	}
}
