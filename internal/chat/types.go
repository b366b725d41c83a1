package chat

import (
	"context"

	"mogges/internal/domain/orders"
	"mogges/internal/domain/products"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	maxHistory = 6

	FallbackReply = "Oj, nagonting gick fel hos mig! Prova igen om en stund 💜"
	emptyReply    = "Oj, jag tappade traden! Kan du fraga igen? 💜"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Message string    `json:"message"`
	History []Message `json:"history"`
}

// Action asks the storefront to navigate somewhere.
type Action struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Label string `json:"label"`
}

type Reply struct {
	Reply  string  `json:"reply"`
	Action *Action `json:"action,omitempty"`
}

// Shop is what the assistant may know about the store when answering:
// products currently in stock and, for a signed-in caller, their latest orders.
type Shop struct {
	Products []*products.Product
	Orders   []orders.Summary
}

// Completer produces the next assistant turn for a conversation.
type Completer interface {
	Name() string
	Complete(ctx context.Context, system string, messages []Message) (string, error)
}
