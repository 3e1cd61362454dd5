package model

import "time"

// User represents a row in the `users` table.  The password is stored only
// as a bcrypt hash; handlers define separate response types so the hash is
// never serialized.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email (unique, lower-cased)
	PasswordHash string    // users.password_hash
	IsStaff      bool      // users.is_staff
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
