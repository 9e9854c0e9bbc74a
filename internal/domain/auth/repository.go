package auth

import (
	"context"
	"time"

	"placement/internal/common"
)

type RefreshTokenRepository interface {
	Store(ctx context.Context, token RefreshToken) error
	GetByToken(ctx context.Context, token string) (*RefreshToken, error)
	// Revoke reports whether this call moved the token from active to revoked.
	Revoke(ctx context.Context, token string, at time.Time) (bool, error)
	// RevokeAll revokes every active token of the user and returns how many it touched.
	RevokeAll(ctx context.Context, userID common.UUID, at time.Time) (int64, error)
}

// AccessTokenDenylist remembers revoked access token ids until they expire.
type AccessTokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
