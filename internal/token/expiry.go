package token

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IsExpired decodes the token payload without checking its signature and
// reports whether its exp claim is at or before now. Tokens that cannot be
// decoded or carry no exp claim count as expired.
func IsExpired(tok string, now time.Time) bool {
	exp, ok := ExpiresAt(tok)
	if !ok {
		return true
	}
	return !exp.After(now)
}

// ExpiresAt returns the exp claim of an unverified token. Only the payload
// segment is read; the header and signature are ignored.
func ExpiresAt(tok string) (time.Time, bool) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	payload, err := jwt.NewParser().DecodeSegment(strings.TrimRight(parts[1], "="))
	if err != nil {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
