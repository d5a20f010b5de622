package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// TokenRepo persists refresh-token sessions in the `refresh_tokens`
// table.  Only the SHA-256 hash of a token is ever stored, so a leaked
// table cannot be replayed against the refresh endpoints; hashing
// happens in the utils package before the value reaches this layer.
// One row is one session: rotation revokes the old row and inserts a
// new one.
type TokenRepo struct {
	db *sql.DB
}

// NewTokenRepo returns a new TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

const (
	insertRefreshSQL = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`
	selectRefreshSQL = `SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1`
	revokeByHashSQL  = `UPDATE refresh_tokens SET revoked_at = NOW() WHERE token_hash = ? AND revoked_at IS NULL`
	revokeForUserSQL = `UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = ? AND revoked_at IS NULL`
)

// StoreRefresh records a new refresh-token session for the user.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, insertRefreshSQL, userID, tokenHash, expiresAt)
	return err
}

// ValidateRefresh resolves a token hash to its owning user id.  A hash
// with no row, a revoked row or an expired row all return
// ErrRefreshInvalid; anything else that goes wrong is a database error
// and propagates as such so handlers can tell the two apart.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, selectRefreshSQL, tokenHash).
		Scan(&userID, &expiresAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrRefreshInvalid
	}
	if err != nil {
		return 0, err
	}
	if revokedAt.Valid || time.Now().UTC().After(expiresAt) {
		return 0, ErrRefreshInvalid
	}
	return userID, nil
}

// RevokeByHash ends the single session identified by the token hash.
// Revoking an already revoked or unknown hash is a no-op.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, revokeByHashSQL, tokenHash)
	return err
}

// RevokeAllForUser ends every active session of the user.  Used by the
// bearer-token logout to invalidate all devices at once.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, revokeForUserSQL, userID)
	return err
}
