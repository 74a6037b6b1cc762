package domain

import "time"

// AccessToken is the stored side of an opaque bearer token. Only the
// sha256 hash of the plaintext ever reaches the database.
type AccessToken struct {
	ID         string
	UserID     string
	TokenHash  string
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	RevokedAt  *time.Time
	CreatedAt  time.Time
}

// Usable reports whether the token is still a valid credential at t:
// it must be unrevoked and, if an expiry is set, unexpired.
func (at *AccessToken) Usable(t time.Time) bool {
	if at.RevokedAt != nil {
		return false
	}
	if at.ExpiresAt != nil && !at.ExpiresAt.After(t) {
		return false
	}
	return true
}
