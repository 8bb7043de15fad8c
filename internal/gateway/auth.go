package gateway

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthResult is the outcome of an authentication attempt.
type AuthResult struct {
	OK     bool   `json:"ok"`
	Method string `json:"method,omitempty"` // "token" | "none"
	Reason string `json:"reason,omitempty"`
}

// Authorize checks client credentials against the configured gateway
// token. With no token configured every client is accepted.
func Authorize(serverToken string, clientAuth *ConnectAuth) AuthResult {
	if serverToken == "" {
		return AuthResult{OK: true, Method: "none"}
	}
	if clientAuth == nil || clientAuth.Token == "" {
		return AuthResult{OK: false, Reason: "token required"}
	}
	if !safeEqual(clientAuth.Token, serverToken) {
		return AuthResult{OK: false, Reason: "token_mismatch"}
	}
	return AuthResult{OK: true, Method: "token"}
}

// requestToken extracts a bearer token from the Authorization header,
// falling back to the token query parameter used by browser WebSockets.
func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	return r.URL.Query().Get("token")
}

// safeEqual performs a constant-time string comparison to prevent timing attacks.
// It avoids early-return on length mismatch to prevent leaking secret length via timing.
func safeEqual(a, b string) bool {
	lenMatch := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	cmp := subtle.ConstantTimeCompare([]byte(a), []byte(b))
	return subtle.ConstantTimeSelect(lenMatch, cmp, 0) == 1
}
