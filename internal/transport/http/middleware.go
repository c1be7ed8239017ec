package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"quiz-studio-service/internal/app"
	"quiz-studio-service/internal/auth"
	"quiz-studio-service/internal/domain"
)

const tokenCookie = "token"

// Authenticator resolves the session token of each request into a requester
// identity. The cookie is tried first, then the Authorization header, so a
// stale cookie does not hide a valid Bearer token. Requests without a usable
// token continue anonymously; handlers decide whether an identity is required.
func Authenticator(users *app.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, token := range tokensFromRequest(r) {
				id, err := users.Authenticate(r.Context(), token)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
					return
				}
				if !errors.Is(err, domain.ErrUnauthenticated) && !errors.Is(err, domain.ErrTokenRevoked) {
					log.Printf("authenticate request: %v", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokensFromRequest(r *http.Request) []string {
	var tokens []string
	if c, err := r.Cookie(tokenCookie); err == nil && c.Value != "" {
		tokens = append(tokens, c.Value)
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		if bearer := strings.TrimSpace(header[7:]); bearer != "" && (len(tokens) == 0 || bearer != tokens[0]) {
			tokens = append(tokens, bearer)
		}
	}
	return tokens
}
