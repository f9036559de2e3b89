package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"apivro/internal/domain/ports/adapter"
)

var _ adapter.SignatureVerifier = (*Signer)(nil)

// Signer computes HMAC-SHA256(privateKey, merchantCode+merchantRef+amount) as lowercase hex.
type Signer struct {
	merchantCode string
	privateKey   []byte
}

func NewSigner(merchantCode, privateKey string) *Signer {
	return &Signer{merchantCode: merchantCode, privateKey: []byte(privateKey)}
}

func (s *Signer) Sign(merchantRef string, amount int64) string {
	mac := hmac.New(sha256.New, s.privateKey)
	mac.Write([]byte(s.merchantCode + merchantRef + strconv.FormatInt(amount, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares in constant time. Hex case is ignored.
func (s *Signer) Verify(merchantRef string, amount int64, signature string) bool {
	if signature == "" {
		return false
	}
	want := s.Sign(merchantRef, amount)
	return hmac.Equal([]byte(want), []byte(strings.ToLower(strings.TrimSpace(signature))))
}
