package repository

import (
	"context"
	"database/sql"
	"time"
)

// Only the SHA-256 of a refresh token is stored.  A token is live while
// it is neither revoked nor past expires_at.
const (
	insertRefreshSQL = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)`

	liveRefreshOwnerSQL = `SELECT user_id FROM refresh_tokens
                           WHERE token_hash=? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()
                           LIMIT 1`

	revokeRefreshSQL = `UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP()
                        WHERE token_hash=? AND revoked_at IS NULL`

	revokeUserRefreshSQL = `UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP()
                            WHERE user_id=? AND revoked_at IS NULL`
)

// TokenRepo keeps the refresh tokens issued at login and refresh.
type TokenRepo struct{ db *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

func (r *TokenRepo) StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error {
	_, err := r.db.ExecContext(ctx, insertRefreshSQL, userID, tokenHash, exp.UTC())
	return err
}

// ValidateRefresh returns the owner of a live token.  Unknown, revoked
// and expired tokens all yield sql.ErrNoRows.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	if err := r.db.QueryRowContext(ctx, liveRefreshOwnerSQL, tokenHash).Scan(&userID); err != nil {
		return "", err
	}
	return userID, nil
}

// RevokeByHash retires one token.  Revoking twice is a no-op.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, revokeRefreshSQL, tokenHash)
	return err
}

// RevokeAllForUser signs a user out of every session.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, revokeUserRefreshSQL, userID)
	return err
}
