package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const systemPrompt = `Du ar Mogge, den varma och personliga shoppingassistenten pa Mogges Store, en modern kladbutik online.

Personlighet:
- Glad, omtanksam och lite charmig med humor
- Hjart-emojis 💜 ibland men inte for mycket
- Svarar ALLTID pa svenska, kort och trevligt (max 2-3 meningar)
- Extra snall om kunden verkar ledsen eller stressad

Butiksinformation:
- Butiken heter Mogges Store (mogges-store.se)
- Vi saljer: Dam Mode, Herr Mode, Accessoarer, Skor
- Fri frakt over 499 kr, 30 dagars oppet kop
- Kontakt: info@moggesstore.se, tel: +46 123 456 789

Regler:
- Svara BARA om shopping, klader, butiken eller kundservice
- Avled artigt fragor om politik, religion eller olampliga amnen
- Anvand aldrig engelska om inte kunden skriver pa engelska
- Om du far produktdata, rekommendera baserat pa den`

type Assistant struct {
	completer Completer
	logger    *zap.SugaredLogger
}

// NewAssistant returns an assistant that answers through completer, or
// through the built-in scripted responder when completer is nil.
func NewAssistant(completer Completer, logger *zap.SugaredLogger) *Assistant {
	if completer == nil {
		completer = scripted{}
	}
	return &Assistant{completer: completer, logger: logger}
}

func (a *Assistant) Provider() string {
	return a.completer.Name()
}

// Respond never fails: completion errors are logged and answered with FallbackReply.
func (a *Assistant) Respond(ctx context.Context, req Request, shop Shop) Reply {
	action := DetectAction(req.Message)

	text, err := a.completer.Complete(ctx, SystemPrompt(shop), Conversation(req))
	if err != nil {
		a.logger.Errorw("chat completion failed", "provider", a.completer.Name(), "error", err)
		return Reply{Reply: FallbackReply}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = emptyReply
	}
	return Reply{Reply: text, Action: action}
}

// SystemPrompt is the persona followed by what is in stock and the caller's orders.
func SystemPrompt(shop Shop) string {
	var b strings.Builder
	b.WriteString(systemPrompt)

	if len(shop.Products) > 0 {
		b.WriteString("\n\nProdukter i lager just nu:")
		for _, p := range shop.Products {
			fmt.Fprintf(&b, "\n- %s (%s) - %s kr, %d i lager", p.Name, p.Category, p.Price.String(), p.Stock)
		}
	}

	if len(shop.Orders) > 0 {
		b.WriteString("\n\nKundens ordrar:")
		for _, o := range shop.Orders {
			fmt.Fprintf(&b, "\n- Order #%d: %s, %s kr (%s)", o.ID, o.Status, o.Total.Round(0).String(), o.CreatedAt.Format("2006-01-02"))
		}
	}
	return b.String()
}

// Conversation keeps the last turns of history that have a known role and
// appends the new customer message.
func Conversation(req Request) []Message {
	history := req.History
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	msgs := make([]Message, 0, len(history)+1)
	for _, h := range history {
		if h.Role != RoleUser && h.Role != RoleAssistant {
			continue
		}
		msgs = append(msgs, h)
	}
	return append(msgs, Message{Role: RoleUser, Content: req.Message})
}
