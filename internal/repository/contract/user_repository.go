package contract

import (
	"context"
	"errors"

	"autofilter-be/internal/entity"
)

// ErrInsufficientTokens is returned by Debit when the balance is lower
// than the requested amount. The balance is never driven negative.
var ErrInsufficientTokens = errors.New("insufficient tokens")

type UserRepository interface {
	// EnsureExists creates the account with a zero balance if it does not
	// exist yet. Existing accounts are left untouched.
	EnsureExists(ctx context.Context, user *entity.UserAccount) error

	FindByUserId(ctx context.Context, userID int64) (*entity.UserAccount, error)

	// Debit atomically subtracts amount, guarded against overdraft.
	Debit(ctx context.Context, userID int64, amount int) error

	// Credit atomically adds amount.
	Credit(ctx context.Context, userID int64, amount int) error

	Count(ctx context.Context) (int64, error)
	AllUserIds(ctx context.Context) ([]int64, error)
}
