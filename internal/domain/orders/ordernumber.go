package orders

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"strconv"
	"strings"
)

const orderNumberPrefix = "MOGG"

var tagEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// OrderNumberGenerator produces customer-facing order references such as
// MOGG-7QKD-002S. The first block is an HMAC tag over the user and order ids,
// the second is the order id in base 36, so distinct orders never collide.
type OrderNumberGenerator struct {
	secret []byte
}

func NewOrderNumberGenerator(secret string) *OrderNumberGenerator {
	return &OrderNumberGenerator{secret: []byte(secret)}
}

func (g *OrderNumberGenerator) Generate(userID, orderID int64) string {
	mac := hmac.New(sha256.New, g.secret)
	fmt.Fprintf(mac, "uid:%d|oid:%d", userID, orderID)
	tag := tagEncoding.EncodeToString(mac.Sum(nil))[:4]

	seq := strings.ToUpper(strconv.FormatInt(orderID, 36))
	if len(seq) < 4 {
		seq = strings.Repeat("0", 4-len(seq)) + seq
	}

	return fmt.Sprintf("%s-%s-%s", orderNumberPrefix, tag, seq)
}
