package implementation

import (
	"context"
	"errors"

	"autofilter-be/internal/entity"
	"autofilter-be/internal/mapper"
	"autofilter-be/internal/model"
	"autofilter-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) EnsureExists(ctx context.Context, user *entity.UserAccount) error {
	m := r.mapper.ToModel(user)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m).Error
}

func (r *UserRepositoryImpl) FindByUserId(ctx context.Context, userID int64) (*entity.UserAccount, error) {
	var m model.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

// Debit subtracts in a single guarded statement. The balance check and
// the write happen in the same UPDATE, so concurrent debits cannot
// overdraw the account.
func (r *UserRepositoryImpl) Debit(ctx context.Context, userID int64, amount int) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ? AND tokens >= ?", userID, amount).
		Update("tokens", gorm.Expr("tokens - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return contract.ErrInsufficientTokens
	}
	return nil
}

func (r *UserRepositoryImpl) Credit(ctx context.Context, userID int64, amount int) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("tokens", gorm.Expr("tokens + ?", amount)).Error
}

func (r *UserRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserRepositoryImpl) AllUserIds(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
