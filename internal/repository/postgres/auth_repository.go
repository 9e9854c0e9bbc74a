package postgres

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"placement/internal/common"
	"placement/internal/domain/auth"
)

// RefreshTokenRepository keeps refresh tokens as SHA-256 digests; the raw value never reaches the database.
type RefreshTokenRepository struct {
	db *sql.DB
}

func NewRefreshTokenRepository(db *sql.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Store(ctx context.Context, token auth.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		token.ID, token.UserID, digestRefreshToken(token.Token), token.ExpiresAt.UTC(), token.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return common.NewError(common.CodeConflict, "refresh token already issued", err)
		}
		return common.NewError(common.CodeInternal, "failed to store refresh token", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByToken(ctx context.Context, token string) (*auth.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, expires_at, created_at, revoked_at
		FROM refresh_tokens WHERE token_hash = $1`, digestRefreshToken(token))
	stored, err := scanRefreshToken(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "refresh token not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load refresh token", err)
	}
	stored.Token = token
	return stored, nil
}

// Revoke is the compare-and-set step of token rotation: of two concurrent
// callers presenting the same token only one gets true.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string, at time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked_at = $1
		WHERE token_hash = $2 AND revoked_at IS NULL`, at.UTC(), digestRefreshToken(token))
	if err != nil {
		return false, common.NewError(common.CodeInternal, "failed to revoke refresh token", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, common.NewError(common.CodeInternal, "failed to revoke refresh token", err)
	}
	return affected == 1, nil
}

func (r *RefreshTokenRepository) RevokeAll(ctx context.Context, userID common.UUID, at time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked_at = $1
		WHERE user_id = $2 AND revoked_at IS NULL`, at.UTC(), userID)
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to revoke refresh tokens", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to revoke refresh tokens", err)
	}
	return affected, nil
}

func scanRefreshToken(row scanner) (*auth.RefreshToken, error) {
	var (
		stored    auth.RefreshToken
		revokedAt sql.NullTime
	)
	if err := row.Scan(&stored.ID, &stored.UserID, &stored.ExpiresAt, &stored.CreatedAt, &revokedAt); err != nil {
		return nil, err
	}
	if revokedAt.Valid {
		at := revokedAt.Time.UTC()
		stored.RevokedAt = &at
	}
	return &stored, nil
}

func digestRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
