package entity

import "time"

// UserAccount is the per-user token ledger account, keyed by the
// transport's numeric user id. Created lazily with a zero balance.
// Username and FirstName are presentation-only.
type UserAccount struct {
	UserId    int64
	Username  string
	FirstName string
	Tokens    int
	JoinedAt  time.Time
}
