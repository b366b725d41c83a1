package params

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const maxSearchLen = 100

// URL: /api/products?category=Skor&search=sneakers
// → ParseCatalogFilter() → CatalogFilter{Category:"Skor", Search:"sneakers"}
// An empty filter means the whole catalog.
type CatalogFilter struct {
	Category string `json:"category,omitempty"`
	Search   string `json:"search,omitempty"`
}

// ParseCatalogFilter reads ?category=...&search=... . Keys are case sensitive.
func ParseCatalogFilter(q url.Values) CatalogFilter {
	f := CatalogFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	}

	if utf8.RuneCountInString(f.Search) > maxSearchLen {
		r := []rune(f.Search)
		f.Search = string(r[:maxSearchLen])
	}
	return f
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchPattern wraps Search for a LIKE/ILIKE match with '\' as the escape
// character, so wildcards typed by the shopper match literally.
func (f CatalogFilter) SearchPattern() string {
	return "%" + likeEscaper.Replace(f.Search) + "%"
}
