package model

import (
	"time"

	"github.com/google/uuid"
)

type File struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FileRef         string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FileName        string    `gorm:"type:text;not null"`
	FileNameNorm    string    `gorm:"type:text;not null;index"`
	Caption         string    `gorm:"type:text"`
	CaptionNorm     string    `gorm:"type:text;index"`
	Category        string    `gorm:"type:varchar(50);not null;default:'document'"`
	Size            int64     `gorm:"default:0"`
	OriginChannelId int64     `gorm:"not null;index"`
	OriginMessageId int64     `gorm:"not null"`
	SeriesName      string    `gorm:"type:text;index"`
	Season          *int      `gorm:"index"`
	Episode         *int
	Quality         *string   `gorm:"type:varchar(20);index"`
	Language        *string   `gorm:"type:varchar(20);index"`
	IndexedAt       time.Time `gorm:"autoCreateTime;index"`
}

func (File) TableName() string {
	return "files"
}
