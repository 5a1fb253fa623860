package specification

import (
	"gorm.io/gorm"

	"autofilter-be/pkg/store"
)

// TextQuery matches the normalized filename or caption, case-insensitive
type TextQuery struct {
	Query string
}

func (s TextQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	return db.Where("file_name_norm ILIKE ? OR caption_norm ILIKE ?", pattern, pattern)
}

// BySeriesName filters by extracted series name (case-insensitive)
type BySeriesName struct {
	Name string
}

func (s BySeriesName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("series_name ILIKE ?", s.Name)
}

// FromFilters converts a session's facet filter set into specifications.
// Nil fields contribute nothing.
func FromFilters(f store.SearchFilters) []Specification {
	var specs []Specification
	if f.SeriesName != nil {
		specs = append(specs, BySeriesName{Name: *f.SeriesName})
	}
	if f.Season != nil {
		specs = append(specs, Filter("season", *f.Season))
	}
	if f.Episode != nil {
		specs = append(specs, Filter("episode", *f.Episode))
	}
	if f.Quality != nil {
		specs = append(specs, Filter("quality", *f.Quality))
	}
	if f.Language != nil {
		specs = append(specs, Filter("language", *f.Language))
	}
	return specs
}
