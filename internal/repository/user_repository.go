package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/yuri-shui/FlightBooking/internal/model"
	"github.com/yuri-shui/FlightBooking/internal/utils"
)

// UserRepo provides access to the `users` table.  User rows are
// created through registration and are read-only for the reservation
// core, which only ever consumes the numeric user id.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID.  Handles are stored
// trimmed and lower-cased so lookups are case-insensitive.
func (r *UserRepo) Create(ctx context.Context, handle, password, displayName string, cost int) (uint64, error) {
	handle = strings.ToLower(strings.TrimSpace(handle))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (handle, display_name, password_hash) VALUES (?,?,?)",
		handle, displayName, hash)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, ErrHandleExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByHandle fetches a user by normalized handle.
func (r *UserRepo) GetByHandle(ctx context.Context, handle string) (model.User, error) {
	handle = strings.ToLower(strings.TrimSpace(handle))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,handle,display_name,password_hash,created_at,updated_at FROM users WHERE handle=? LIMIT 1",
		handle).Scan(&u.ID, &u.Handle, &u.DisplayName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,handle,display_name,password_hash,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Handle, &u.DisplayName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Authenticate looks up the user by handle and verifies the password
// against the stored bcrypt hash.  A missing user and a wrong password
// are indistinguishable to the caller: both return sql.ErrNoRows, so
// login responses cannot be used to probe which handles exist.
func (r *UserRepo) Authenticate(ctx context.Context, handle, password string) (model.User, error) {
	u, err := r.GetByHandle(ctx, handle)
	if err != nil {
		return model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}
