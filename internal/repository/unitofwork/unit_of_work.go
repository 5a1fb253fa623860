package unitofwork

import (
	"context"

	"autofilter-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	FileRepository() contract.FileRepository
	UserRepository() contract.UserRepository
}
