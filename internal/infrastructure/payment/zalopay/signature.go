package zalopay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Signer computes and checks ZaloPay MACs. Orders are signed with key1 over
// a fixed pipe-delimited field order; callbacks are verified with key2 over
// the raw data string.
type Signer struct {
	key1 []byte
	key2 []byte
}

func NewSigner(key1, key2 string) *Signer {
	return &Signer{
		key1: []byte(key1),
		key2: []byte(key2),
	}
}

func hmacSHA256(key []byte, data string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignOrder produces the order MAC. The field order is fixed by the
// protocol: app_id|app_trans_id|app_user|amount|app_time|embed_data|item.
func (s *Signer) SignOrder(appID, appTransID, appUser, amount, appTime, embedData, item string) string {
	data := strings.Join([]string{appID, appTransID, appUser, amount, appTime, embedData, item}, "|")
	return hmacSHA256(s.key1, data)
}

// VerifyCallback checks the callback MAC over the raw data string in
// constant time. Empty MACs never verify.
func (s *Signer) VerifyCallback(rawData, suppliedMac string) bool {
	if suppliedMac == "" {
		return false
	}
	computed := hmacSHA256(s.key2, rawData)
	return hmac.Equal([]byte(computed), []byte(strings.ToLower(suppliedMac)))
}
