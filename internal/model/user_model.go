package model

import "time"

type User struct {
	UserId    int64     `gorm:"primaryKey;autoIncrement:false"`
	Username  string    `gorm:"type:varchar(255)"`
	FirstName string    `gorm:"type:varchar(255)"`
	Tokens    int       `gorm:"not null;default:0"`
	JoinedAt  time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
