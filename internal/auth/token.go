package auth

import (
	"net/http"
	"strings"
)

const AccessTokenCookie = "access_token"

// ExtractAccessToken reads the token from the access_token cookie, falling
// back to a Bearer Authorization header.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	return ""
}
