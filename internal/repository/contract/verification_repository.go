package contract

import (
	"context"
	"time"

	"autofilter-be/internal/entity"
)

type VerificationRepository interface {
	// Save stores the token with the given TTL. The store expires it on
	// its own; redemption still re-checks the stored deadline.
	Save(ctx context.Context, token *entity.VerificationToken, ttl time.Duration) error

	// Take atomically fetches and deletes the token, enforcing single
	// use. Returns (nil, nil) when the token is unknown or expired.
	Take(ctx context.Context, token string) (*entity.VerificationToken, error)
}
