package mapper

import (
	"autofilter-be/internal/entity"
	"autofilter-be/internal/model"
)

type FileMapper struct{}

func NewFileMapper() *FileMapper {
	return &FileMapper{}
}

func (m *FileMapper) ToEntity(f *model.File) *entity.FileRecord {
	if f == nil {
		return nil
	}
	return &entity.FileRecord{
		Id:              f.Id,
		FileRef:         f.FileRef,
		FileName:        f.FileName,
		FileNameNorm:    f.FileNameNorm,
		Caption:         f.Caption,
		CaptionNorm:     f.CaptionNorm,
		Category:        entity.FileCategory(f.Category),
		Size:            f.Size,
		OriginChannelId: f.OriginChannelId,
		OriginMessageId: f.OriginMessageId,
		Tags: entity.MediaTags{
			SeriesName: f.SeriesName,
			Season:     f.Season,
			Episode:    f.Episode,
			Quality:    f.Quality,
			Language:   f.Language,
		},
		IndexedAt: f.IndexedAt,
	}
}

func (m *FileMapper) ToModel(f *entity.FileRecord) *model.File {
	if f == nil {
		return nil
	}
	return &model.File{
		Id:              f.Id,
		FileRef:         f.FileRef,
		FileName:        f.FileName,
		FileNameNorm:    f.FileNameNorm,
		Caption:         f.Caption,
		CaptionNorm:     f.CaptionNorm,
		Category:        string(f.Category),
		Size:            f.Size,
		OriginChannelId: f.OriginChannelId,
		OriginMessageId: f.OriginMessageId,
		SeriesName:      f.Tags.SeriesName,
		Season:          f.Tags.Season,
		Episode:         f.Tags.Episode,
		Quality:         f.Tags.Quality,
		Language:        f.Tags.Language,
		IndexedAt:       f.IndexedAt,
	}
}

func (m *FileMapper) ToEntities(files []*model.File) []*entity.FileRecord {
	entities := make([]*entity.FileRecord, len(files))
	for i, f := range files {
		entities[i] = m.ToEntity(f)
	}
	return entities
}
