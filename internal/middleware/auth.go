package middleware

import (
	"encoding/json"
	"net/http"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

// AuthMiddleware resolves the caller from the access token. Requests without a
// token, or with one that no longer verifies, pass through anonymously;
// route-level guards decide what needs a user.
func AuthMiddleware(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Parse(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("ignoring unverifiable access token", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
