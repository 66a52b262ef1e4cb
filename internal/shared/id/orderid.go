// Package id generates merchant order identifiers.
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// OrderIDPrefix marks merchant-generated order ids.
const OrderIDPrefix = "ORD"

// NewOrderID generates an order id of the form ORD<unix-millis><3-digit-random>.
// Collisions are treated as negligible; the unique index on the payment's
// gateway_order_id column is the backstop.
func NewOrderID() string {
	return NewOrderIDAt(time.Now())
}

// NewOrderIDAt generates an order id for the given timestamp.
func NewOrderIDAt(t time.Time) string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		// crypto/rand failing means the platform is broken; fall back to the
		// timestamp alone rather than aborting order creation.
		return fmt.Sprintf("%s%d", OrderIDPrefix, t.UnixMilli())
	}
	return fmt.Sprintf("%s%d%03d", OrderIDPrefix, t.UnixMilli(), n.Int64())
}

// IsOrderID reports whether s looks like a merchant order id.
func IsOrderID(s string) bool {
	if !strings.HasPrefix(s, OrderIDPrefix) {
		return false
	}
	rest := s[len(OrderIDPrefix):]
	if rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
