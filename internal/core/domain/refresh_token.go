package domain

import "time"

// RefreshToken is a long-lived, single-use-per-rotation capability to mint a
// new access token. Tokens are never deleted: a revoked token keeps its
// revocation metadata so the rotation chain stays walkable for audit.
type RefreshToken struct {
	Token           string     `bson:"token"`
	OwnerID         string     `bson:"owner_id"`
	ExpiresAt       time.Time  `bson:"expires_at"`
	CreatedAt       time.Time  `bson:"created_at"`
	CreatedByIP     string     `bson:"created_by_ip"`
	RevokedAt       *time.Time `bson:"revoked_at,omitempty"`
	RevokedByIP     string     `bson:"revoked_by_ip,omitempty"`
	ReplacedByToken string     `bson:"replaced_by_token,omitempty"`
}

// IsActive reports whether the token can still be presented at instant now.
// A token is active until it is revoked or expires, whichever comes first.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
