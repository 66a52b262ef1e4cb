package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Signer computes and checks VNPay request signatures: HMAC-SHA512 over the
// key-sorted, URL-encoded parameter string, spaces encoded as '+'.
type Signer struct {
	secret []byte
}

func NewSigner(hashSecret string) *Signer {
	return &Signer{secret: []byte(hashSecret)}
}

// hashData builds the canonical signed string. Empty values are skipped,
// matching what VNPay signs on its side.
func hashData(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

func (s *Signer) Sign(params map[string]string) string {
	mac := hmac.New(sha512.New, s.secret)
	mac.Write([]byte(hashData(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature over every parameter except the signature
// fields themselves and compares in constant time. A missing or empty
// supplied hash never verifies.
func (s *Signer) Verify(params map[string]string) bool {
	supplied, ok := params["vnp_SecureHash"]
	if !ok || supplied == "" {
		return false
	}

	signed := make(map[string]string, len(params))
	for k, v := range params {
		if k == "vnp_SecureHash" || k == "vnp_SecureHashType" {
			continue
		}
		signed[k] = v
	}

	computed := s.Sign(signed)
	return hmac.Equal([]byte(computed), []byte(strings.ToLower(supplied)))
}

// SignedQuery returns the URL-encoded query string with the signature
// appended, ready to be attached to the gateway endpoint.
func (s *Signer) SignedQuery(params map[string]string) string {
	query := hashData(params)
	return query + "&vnp_SecureHash=" + s.Sign(params)
}
