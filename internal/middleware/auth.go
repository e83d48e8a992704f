package middleware

import (
	"net/http"
	"strings"

	"github.com/baharkarakas/blog-backend/internal/api/httpx"
	"github.com/baharkarakas/blog-backend/internal/models"
)

// Authenticator verifies a token and returns the user id it carries.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

type AuthMiddleware struct {
	Verifier Authenticator
}

func NewAuthMiddleware(v Authenticator) *AuthMiddleware {
	return &AuthMiddleware{Verifier: v}
}

// bearerToken accepts "Bearer <token>" (any case) or a bare token.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if strings.EqualFold(header, "bearer") {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// Auth rejects requests without a token (401) or with a token that fails
// verification (400), and otherwise stores the caller's id in the context.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			httpx.WriteError(w, http.StatusUnauthorized, models.CodeUnauthorized, "No token, authorization denied", nil)
			return
		}

		userID, err := m.Verifier.Authenticate(token)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, models.CodeInvalidToken, "Invalid token", nil)
			return
		}
		ctx := WithUser(r.Context(), UserCtx{UserID: userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
