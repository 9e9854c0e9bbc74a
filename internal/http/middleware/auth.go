package middleware

import (
	"context"
	"net/http"
	"strings"

	"placement/internal/common"
	"placement/internal/domain/auth"
	"placement/internal/domain/user"
	"placement/internal/http/response"
	"placement/internal/security"
)

type AuthMiddleware struct {
	jwt      *security.JWTProvider
	denylist auth.AccessTokenDenylist
}

func NewAuthMiddleware(jwt *security.JWTProvider, denylist auth.AccessTokenDenylist) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, denylist: denylist}
}

// Authenticate turns the bearer token into an auth.Session on the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid authorization header", nil))
			return
		}
		claims, err := m.jwt.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid token", err))
			return
		}
		userID, err := common.ParseUUID(claims.Sub)
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid user id", err))
			return
		}
		role, ok := user.ParseRole(claims.Role)
		if !ok {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid role", nil))
			return
		}
		if m.denylist != nil && claims.Jti != "" {
			revoked, err := m.denylist.IsRevoked(r.Context(), claims.Jti)
			if err != nil {
				response.Error(w, common.NewError(common.CodeInternal, "check token", err))
				return
			}
			if revoked {
				response.Error(w, common.NewError(common.CodeUnauthorized, "token revoked", nil))
				return
			}
		}
		session := auth.Session{UserID: userID, Role: role, TokenID: claims.Jti, ExpiresAt: claims.ExpiresAt()}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
	})
}

func RequireRole(role user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := auth.SessionFromContext(r.Context())
			if !ok {
				response.Error(w, common.NewError(common.CodeUnauthorized, "unauthorized", nil))
				return
			}
			if session.Role != role {
				response.Error(w, common.NewError(common.CodeForbidden, "insufficient role", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	return auth.SessionFromContext(ctx)
}
