package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Each field corresponds to a column in the
// database.  The json tags are omitted here because these structs
// are used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Handle       – unique login handle.
//  DisplayName  – full name shown alongside bookings.
//  PasswordHash – bcrypt hashed password.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Handle       string    // users.handle
	DisplayName  string    // users.display_name
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// Reservation is the binding between a user and a single flight.  The
// (UserID, FlightID) pair is the whole identity of a reservation; a
// two-leg itinerary produces two rows.  Capacity (at most three
// reservations per flight) and daily exclusivity (at most one
// itinerary per user per date) are enforced transactionally by the
// repository layer, not by this struct.
type Reservation struct {
	UserID   uint64 // reservations.user_id
	FlightID uint64 // reservations.flight_id
}
