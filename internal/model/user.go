package model

import "time"

// Roles stored in users.role.  The role is descriptive metadata shown in
// profiles; administrative capability is gated by IsStaff/IsSuperuser.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a row of the `users` table.  Email is the identity key
// and is stored lowercased.  PasswordHash holds the bcrypt digest and never
// a plaintext password.  Handlers define separate response types with JSON
// tags; this struct is internal to the repository layer.
//
// LastLogin participates in reset-token derivation: together with the
// password hash it binds outstanding reset tokens to the user's current
// state, so a login or password change invalidates them.
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email (unique)
	PasswordHash string     // users.password_hash
	FirstName    string     // users.first_name
	LastName     string     // users.last_name
	Phone        string     // users.phone ("" when unset)
	Role         string     // users.role (user|admin)
	Avatar       string     // users.avatar ("" when unset)
	IsActive     bool       // users.is_active
	IsStaff      bool       // users.is_staff
	IsSuperuser  bool       // users.is_superuser
	LastLogin    *time.Time // users.last_login (nil before first login)
	DateJoined   time.Time  // users.date_joined
}
