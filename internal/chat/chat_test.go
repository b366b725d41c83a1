package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mogges/internal/domain/orders"
	"mogges/internal/domain/products"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestDetectAction(t *testing.T) {
	tests := []struct {
		message string
		want    *Action
	}{
		{"Har ni snygga skor?", &Action{"navigate", "/products.html?category=Skor", "Visa Skor"}},
		{"Jag söker en klänning till fest", &Action{"navigate", "/products.html?category=Dam%20Mode", "Visa Dam Mode"}},
		{"Visa herrkläder", &Action{"navigate", "/products.html?category=Herr%20Mode", "Visa Herr Mode"}},
		{"en ny väska", &Action{"navigate", "/products.html?category=Accessoarer", "Visa Accessoarer"}},
		{"kan du visa mig era jeans", &Action{"navigate", "/products.html?search=jeans", "Sok: jeans"}},
		{"jag letar efter en blå jacka", &Action{"navigate", "/products.html?search=jag%20bla%20jacka", "Sok: jag bla jacka"}},
		{"visa", nil},
		{"Hur lång är leveranstiden?", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := DetectAction(tt.message)
		if (got == nil) != (tt.want == nil) {
			t.Fatalf("DetectAction(%q) = %+v, want %+v", tt.message, got, tt.want)
		}
		if got != nil && *got != *tt.want {
			t.Fatalf("DetectAction(%q) = %+v, want %+v", tt.message, *got, *tt.want)
		}
	}
}

func TestConversationKeepsLastSixKnownTurns(t *testing.T) {
	var history []Message
	for i := 0; i < 10; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		history = append(history, Message{Role: role, Content: fmt.Sprint(i)})
	}
	history[8].Role = "system"

	msgs := Conversation(Request{Message: "ny fraga", History: history})

	var contents []string
	for _, m := range msgs {
		contents = append(contents, m.Content)
	}
	if got := strings.Join(contents, ","); got != "4,5,6,7,9,ny fraga" {
		t.Fatalf("conversation = %s", got)
	}
	if msgs[len(msgs)-1].Role != RoleUser {
		t.Fatal("last message is not from the user")
	}
}

func TestSystemPromptIncludesShop(t *testing.T) {
	shop := Shop{
		Products: []*products.Product{{Name: "Sneakers Vit", Category: "Skor", Price: decimal.NewFromInt(899), Stock: 3}},
		Orders: []orders.Summary{{
			ID: 12, Status: orders.StatusShipped, Total: decimal.RequireFromString("498.40"),
			CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		}},
	}
	p := SystemPrompt(shop)
	for _, want := range []string{"- Sneakers Vit (Skor) - 899 kr, 3 i lager", "- Order #12: shipped, 498 kr (2026-03-01)"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(SystemPrompt(Shop{}), "Kundens ordrar") {
		t.Fatal("empty shop produced an order section")
	}
}

type stubCompleter struct {
	reply string
	err   error
	got   []Message
}

func (s *stubCompleter) Name() string { return "stub" }

func (s *stubCompleter) Complete(_ context.Context, _ string, m []Message) (string, error) {
	s.got = m
	return s.reply, s.err
}

func TestRespond(t *testing.T) {
	logger := zap.NewNop().Sugar()

	stub := &stubCompleter{reply: " Kolla in våra skor! "}
	r := NewAssistant(stub, logger).Respond(context.Background(), Request{Message: "skor?"}, Shop{})
	if r.Reply != "Kolla in våra skor!" || r.Action == nil || r.Action.Label != "Visa Skor" {
		t.Fatalf("reply = %+v", r)
	}

	stub = &stubCompleter{err: errors.New("boom")}
	r = NewAssistant(stub, logger).Respond(context.Background(), Request{Message: "skor?"}, Shop{})
	if r.Reply != FallbackReply || r.Action != nil {
		t.Fatalf("fallback reply = %+v", r)
	}

	stub = &stubCompleter{}
	r = NewAssistant(stub, logger).Respond(context.Background(), Request{Message: "hej"}, Shop{})
	if r.Reply != emptyReply {
		t.Fatalf("empty completion reply = %+v", r)
	}
}

func TestScriptedResponder(t *testing.T) {
	a := NewAssistant(nil, zap.NewNop().Sugar())
	if a.Provider() != "scripted" {
		t.Fatalf("provider = %s", a.Provider())
	}

	r := a.Respond(context.Background(), Request{Message: "Vad kostar frakten?"}, Shop{})
	if !strings.Contains(r.Reply, "499") {
		t.Fatalf("shipping reply = %q", r.Reply)
	}

	shop := Shop{Orders: []orders.Summary{{ID: 3, Status: orders.StatusPaid, Total: decimal.NewFromInt(250), CreatedAt: time.Now()}}}
	r = a.Respond(context.Background(), Request{Message: "Var är min order?"}, shop)
	if !strings.Contains(r.Reply, "Order #3: paid") {
		t.Fatalf("order reply = %q", r.Reply)
	}
}

func TestAnthropicProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" || r.Header.Get("x-api-key") != "k" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.System == "" || len(req.Messages) != 1 || req.MaxTokens != 256 {
			http.Error(w, "unexpected body", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Hej!"}]}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: "m", BaseURL: srv.URL})
	got, err := p.Complete(context.Background(), "sys", []Message{{Role: RoleUser, Content: "hej"}})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "Hej!" {
		t.Fatalf("reply = %q", got)
	}

	bad := NewAnthropicProvider(AnthropicConfig{APIKey: "wrong", Model: "m", BaseURL: srv.URL})
	if _, err := bad.Complete(context.Background(), "sys", []Message{{Role: RoleUser, Content: "hej"}}); err == nil {
		t.Fatal("expected error for rejected request")
	}
}
