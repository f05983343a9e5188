package types

import "time"

// Role is the marketplace role of an account.
type Role string

const (
	RoleIndustry Role = "industry"
	RoleArtisan  Role = "artisan"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleIndustry, RoleArtisan, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanRegister reports whether accounts with this role may self-register.
// Admin accounts are provisioned out of band.
func (r Role) CanRegister() bool {
	return r == RoleIndustry || r == RoleArtisan
}

// Identity represents the authenticated account as returned by the API.
// It is replaced wholesale on login or refresh and never mutated in place.
type Identity struct {
	// ID is the unique identifier of the account.
	ID string `json:"id" db:"id"`

	// Email is the login e-mail address.
	Email string `json:"email" db:"email"`

	// Role decides which dashboard and operations are available.
	Role Role `json:"role" db:"role"`

	// Name is the display name, or the contact person for industries.
	Name string `json:"name" db:"name"`

	// CompanyName is set for industry accounts.
	CompanyName string `json:"company_name,omitempty" db:"company_name"`

	// GSTNumber is the tax registration number of industry accounts.
	GSTNumber string `json:"gst_number,omitempty" db:"gst_number"`

	// Location is set for artisan accounts.
	Location string `json:"location,omitempty" db:"location"`

	// IsVerified is true once the platform has verified the account.
	IsVerified bool `json:"is_verified" db:"is_verified"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Account is the server-side record behind an Identity.
type Account struct {
	Identity

	// PasswordHash stores the bcrypt hash of the password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// IsActive is false for deactivated accounts, which cannot log in.
	IsActive bool `json:"-" db:"is_active"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}

// RegisterData is the payload exchanged for a new account and token.
type RegisterData struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        Role   `json:"role"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name,omitempty"`
	GSTNumber   string `json:"gst_number,omitempty"`
	Location    string `json:"location,omitempty"`
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	User  Identity `json:"user"`
	Token string   `json:"token"`
}
