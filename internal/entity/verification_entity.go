package entity

import "time"

// VerificationToken is a single-use, expiring token handed to the link
// shortener flow. Redemption is at-most-once; the store deletes it on
// first redemption and lets TTL expiry collect the rest.
type VerificationToken struct {
	Token     string    `json:"token"`
	UserId    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
