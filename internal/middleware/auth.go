package middleware

import (
	"net/http"

	"printdesk-be/internal/auth"
	"printdesk-be/internal/utils"
)

// AuthMiddleware resolves the acting user from a JWT, if one is present.
// Requests without a valid token pass through anonymously; handlers decide
// whether an actor is required.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := auth.ExtractAccessToken(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := auth.ParseJWT(tokenStr)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.Name, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
