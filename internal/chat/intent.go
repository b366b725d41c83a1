package chat

import (
	"net/url"
	"strings"
)

var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"skor", "Skor"},
	{"sko", "Skor"},
	{"sneakers", "Skor"},
	{"dam", "Dam Mode"},
	{"damklader", "Dam Mode"},
	{"dammode", "Dam Mode"},
	{"klanning", "Dam Mode"},
	{"herr", "Herr Mode"},
	{"herrklader", "Herr Mode"},
	{"herrmode", "Herr Mode"},
	{"accessoarer", "Accessoarer"},
	{"accessoar", "Accessoarer"},
	{"vaska", "Accessoarer"},
	{"smycke", "Accessoarer"},
}

// showPhrases signal that the customer wants to look at products.
var showPhrases = []string{
	"visa", "visar", "se", "titta", "kolla", "har ni", "finns det", "sok",
	"hitta", "vill ha", "letar efter", "shoppa",
}

// fillerWords are dropped before the rest of a message is used as a search query.
var fillerWords = []string{
	"mig", "era", "nagra", "nagon", "kan du", "kan jag", "pa", "i", "for", "med",
	"ett", "en", "det", "den", "de", "som",
}

var folder = strings.NewReplacer("å", "a", "ä", "a", "ö", "o", "é", "e")

// normalize lowercases, folds Swedish letters to ASCII and splits into words.
func normalize(s string) []string {
	s = folder.Replace(strings.ToLower(s))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-')
	})
}

// DetectAction maps a customer message to a navigation action, or nil.
// A category keyword wins; otherwise a show-intent phrase turns the
// remaining words into a free-text search.
func DetectAction(message string) *Action {
	words := normalize(message)

	for _, ck := range categoryKeywords {
		for _, w := range words {
			if strings.HasPrefix(w, ck.keyword) {
				return &Action{
					Type:  "navigate",
					URL:   "/products.html?category=" + url.PathEscape(ck.category),
					Label: "Visa " + ck.category,
				}
			}
		}
	}

	rest, matched := strip(words, showPhrases)
	if !matched {
		return nil
	}
	rest, _ = strip(rest, fillerWords)

	query := strings.Join(rest, " ")
	if len(query) <= 2 {
		return nil
	}
	return &Action{
		Type:  "navigate",
		URL:   "/products.html?search=" + url.PathEscape(query),
		Label: "Sok: " + query,
	}
}

// strip removes every occurrence of the given one- or two-word phrases and
// reports whether any was found.
func strip(words []string, phrases []string) ([]string, bool) {
	out := make([]string, 0, len(words))
	found := false

	for i := 0; i < len(words); i++ {
		skip := 0
		for _, p := range phrases {
			parts := strings.Fields(p)
			if i+len(parts) > len(words) {
				continue
			}
			if equalWords(words[i:i+len(parts)], parts) && len(parts) > skip {
				skip = len(parts)
			}
		}
		if skip > 0 {
			found = true
			i += skip - 1
			continue
		}
		out = append(out, words[i])
	}
	return out, found
}

func equalWords(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
