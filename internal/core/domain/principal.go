package domain

import "time"

// Role is the authorization level attached to a principal.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Principal models an authenticated identity. PasswordHash never leaves the
// service layer; outward-facing responses use Summary.
type Principal struct {
	ID           string    `bson:"_id,omitempty"`
	DisplayName  string    `bson:"display_name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         Role      `bson:"role"`
	Active       bool      `bson:"active"`
	CreatedAt    time.Time `bson:"created_at"`
	ModifiedAt   time.Time `bson:"modified_at"`
	ModifiedBy   string    `bson:"modified_by"`
}

// PrincipalSummary is the redacted view of a principal returned to clients.
// The password hash is structurally unrepresentable here.
type PrincipalSummary struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// Summary returns the redacted view of p.
func (p *Principal) Summary() PrincipalSummary {
	return PrincipalSummary{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Role:        p.Role,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		ModifiedAt:  p.ModifiedAt,
	}
}
