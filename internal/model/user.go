package model

import "time"

// Role names carried in the JWT "role" claim.
const (
	RoleGuest      = "GUEST"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

// User represents an application user record as stored in the
// `users` table.  Guests book rooms for themselves; ADMIN users manage
// the bookings and inventory of a single hotel (HotelID); SUPER_ADMIN
// users manage every hotel.
//
// Fields:
//
//	ID           – primary key identifier (UUID).
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	FirstName    – given name.
//	LastName     – family name.
//	Role         – GUEST, ADMIN or SUPER_ADMIN.
//	HotelID      – hotel managed by an ADMIN (nullable).
//	IsActive     – whether the account is active.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Role         string    // users.role
	HotelID      *string   // users.hotel_id (nullable)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The
// plain token is not stored; only its SHA‑256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
