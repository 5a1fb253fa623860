package mapper

import (
	"autofilter-be/internal/entity"
	"autofilter-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.UserAccount {
	if u == nil {
		return nil
	}
	return &entity.UserAccount{
		UserId:    u.UserId,
		Username:  u.Username,
		FirstName: u.FirstName,
		Tokens:    u.Tokens,
		JoinedAt:  u.JoinedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.UserAccount) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		UserId:    u.UserId,
		Username:  u.Username,
		FirstName: u.FirstName,
		Tokens:    u.Tokens,
		JoinedAt:  u.JoinedAt,
	}
}
