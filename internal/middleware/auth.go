package middleware

import (
	"net/http"
	"strings"

	"lumina/internal/auth"
	"lumina/internal/httputil"
)

// LocalUserID is attributed to every request when no verifier is configured
const LocalUserID = "local"

// AuthMiddleware validates the bearer token on /api routes and stores the user ID
// in the request context. With a nil verifier every request runs as LocalUserID.
func AuthMiddleware(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil || !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, httputil.WithUserID(r, LocalUserID))
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, claims.GetUserID()))
		})
	}
}
