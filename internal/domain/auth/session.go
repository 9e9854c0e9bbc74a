package auth

import (
	"context"
	"time"

	"placement/internal/common"
	"placement/internal/domain/user"
)

// Session is the authenticated caller of a request.
type Session struct {
	UserID    common.UUID
	Role      user.Role
	TokenID   string
	ExpiresAt time.Time
}

func (s Session) IsAdmin() bool {
	return s.Role == user.RoleAdmin
}

// CanAccess reports whether the session may act on resources owned by ownerID.
func (s Session) CanAccess(ownerID common.UUID) bool {
	switch s.Role {
	case user.RoleAdmin:
		return true
	case user.RoleStudent:
		return s.UserID == ownerID
	default:
		return false
	}
}

type sessionKey struct{}

func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(Session)
	return session, ok
}
