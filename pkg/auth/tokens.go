package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Auth errors form the credential half of the error taxonomy. A missing
// credential is ErrUnauthorized; a credential that fails verification in
// any way (bad signature, expired, malformed) is ErrInvalidToken.
var (
	ErrUnauthorized = errors.New("missing credential")
	ErrInvalidToken = errors.New("invalid token")
)

// Gate signs and verifies session tokens with a shared secret. Verification
// is stateless; the token is the only session state.
type Gate struct {
	secret []byte
	ttl    time.Duration
}

// NewGate builds a session gate. ttl <= 0 falls back to 72h.
func NewGate(secret string, ttl time.Duration) *Gate {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Gate{secret: []byte(secret), ttl: ttl}
}

// Sign issues a token for identity: base64url("identity|expiry") plus a hex
// HMAC-SHA256 signature over the encoded payload.
func (g *Gate) Sign(identity string) string {
	exp := time.Now().UTC().Add(g.ttl).Unix()
	payload := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf("%s|%d", identity, exp)))
	return payload + "." + g.sign(payload)
}

// Verify checks the token signature and expiry and returns the identity
// claim.
func (g *Gate) Verify(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", ErrUnauthorized
	}
	payload, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(g.sign(payload)), []byte(sig)) {
		return "", ErrInvalidToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrInvalidToken
	}
	identity, expStr, ok := strings.Cut(string(raw), "|")
	if !ok || identity == "" {
		return "", ErrInvalidToken
	}
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if time.Now().UTC().Unix() > exp {
		return "", ErrInvalidToken
	}
	return identity, nil
}

func (g *Gate) sign(payload string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
