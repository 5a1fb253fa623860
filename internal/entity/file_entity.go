package entity

import (
	"time"

	"github.com/google/uuid"
)

type FileCategory string

const (
	FileCategoryVideo    FileCategory = "video"
	FileCategoryAudio    FileCategory = "audio"
	FileCategoryDocument FileCategory = "document"
)

// MediaTags holds the structured metadata recovered from a filename or
// caption. Missing fields stay nil/empty; SeriesName is never empty on
// extractor output (it falls back to the bare filename).
type MediaTags struct {
	SeriesName string
	Season     *int
	Episode    *int
	Quality    *string
	Language   *string
}

// FileRecord is an indexed media file. FileRef is the transport's opaque
// content reference and is the record's unique identity; re-ingesting the
// same FileRef is a no-op, never an overwrite.
type FileRecord struct {
	Id              uuid.UUID
	FileRef         string
	FileName        string
	FileNameNorm    string
	Caption         string
	CaptionNorm     string
	Category        FileCategory
	Size            int64
	OriginChannelId int64
	OriginMessageId int64
	Tags            MediaTags
	IndexedAt       time.Time
}
