package chat

import (
	"context"
	"strings"
)

// scripted answers common storefront questions without a language model.
type scripted struct{}

func (scripted) Name() string { return "scripted" }

var scriptedAnswers = []struct {
	keywords    []string
	reply       string
	aboutOrders bool
}{
	{[]string{"frakt", "leverans", "skicka"}, "Vi har fri frakt over 499 kr, annars kostar den 49 kr. 📦", false},
	{[]string{"retur", "oppet kop", "byta", "angra"}, "Du har 30 dagars oppet kop, sa det ar inga problem att byta eller lamna tillbaka! 💜", false},
	{[]string{"order", "bestallning", "paket"}, "Logga in sa kan jag kolla dina senaste ordrar at dig!", true},
	{[]string{"kontakt", "telefon", "mejl", "mail"}, "Du nar oss pa info@moggesstore.se eller +46 123 456 789.", false},
	{[]string{"hej", "hallo", "tjena", "hejsan"}, "Hej och valkommen till Mogges Store! Vad kan jag hjalpa dig med idag? 💜", false},
}

func (scripted) Complete(_ context.Context, system string, messages []Message) (string, error) {
	last := ""
	if len(messages) > 0 {
		last = strings.Join(normalize(messages[len(messages)-1].Content), " ")
	}

	for _, a := range scriptedAnswers {
		for _, k := range a.keywords {
			if containsWords(last, k) {
				if a.aboutOrders {
					if line := firstOrderLine(system); line != "" {
						return "Din senaste order:" + line + " 💜", nil
					}
				}
				return a.reply, nil
			}
		}
	}

	if DetectAction(last) != nil {
		return "Sjalvklart! Jag tar dig dit direkt. 💜", nil
	}
	return "Det vet jag tyvarr inte, men fraga garna om vara klader, frakt eller returer! 💜", nil
}

// containsWords matches phrase at a word start, so "frakt" also finds "frakten".
func containsWords(text, phrase string) bool {
	return strings.Contains(" "+text, " "+phrase)
}

// firstOrderLine pulls the newest order out of the system prompt.
func firstOrderLine(system string) string {
	const header = "\n\nKundens ordrar:"
	i := strings.Index(system, header)
	if i < 0 {
		return ""
	}
	rest := system[i+len(header):]
	if len(rest) < 2 {
		return ""
	}
	if j := strings.Index(rest[1:], "\n"); j >= 0 {
		rest = rest[:j+1]
	}
	return strings.TrimPrefix(rest, "\n-")
}
