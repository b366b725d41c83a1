package orders

import (
	"regexp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPaid, StatusShipped, StatusCancelled} {
		if !s.Valid() {
			t.Fatalf("%s reported invalid", s)
		}
	}
	for _, s := range []Status{"", "PAID", "refunded", "delivered"} {
		if s.Valid() {
			t.Fatalf("%q reported valid", s)
		}
	}
}

func TestShippingFor(t *testing.T) {
	tests := []struct {
		subtotal string
		want     int64
	}{
		{"0", 49},
		{"499.99", 49},
		{"500", 0},
		{"1299", 0},
	}
	for _, tt := range tests {
		got := ShippingFor(decimal.RequireFromString(tt.subtotal))
		if !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Fatalf("ShippingFor(%s) = %s, want %d", tt.subtotal, got, tt.want)
		}
	}
}

func TestOrderNumberFormat(t *testing.T) {
	gen := NewOrderNumberGenerator("secret")
	re := regexp.MustCompile(`^MOGG-[A-Z2-7]{4}-[0-9A-Z]{4,}$`)

	seen := map[string]bool{}
	for id := int64(1); id <= 2000; id++ {
		n := gen.Generate(7, id)
		if !re.MatchString(n) {
			t.Fatalf("order number %q has wrong format", n)
		}
		if seen[n] {
			t.Fatalf("order number %q repeated at id %d", n, id)
		}
		seen[n] = true
	}

	if got := gen.Generate(7, 71); got != gen.Generate(7, 71) {
		t.Fatalf("order number not stable: %q", got)
	}
	if got := gen.Generate(7, 71); !strings.HasSuffix(got, "-001Z") {
		t.Fatalf("order number %q does not end with the base 36 id", got)
	}
	if NewOrderNumberGenerator("other").Generate(7, 71) == gen.Generate(7, 71) {
		t.Fatal("tag does not depend on the secret")
	}
}
