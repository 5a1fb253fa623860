package implementation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"autofilter-be/internal/entity"
	"autofilter-be/internal/mapper"
	"autofilter-be/internal/model"
	"autofilter-be/internal/repository/contract"
	"autofilter-be/internal/repository/specification"

	"gorm.io/gorm"
)

// Facet columns exposed to DistinctValues. Integer columns are cast so
// every facet value lists as text; DISTINCT requires the ORDER BY
// expression in the select list, so numeric facets are re-sorted after
// the query.
var facetColumns = map[string]struct {
	Expr    string
	Numeric bool
}{
	"season":   {Expr: "season::text", Numeric: true},
	"episode":  {Expr: "episode::text", Numeric: true},
	"quality":  {Expr: "quality"},
	"language": {Expr: "language"},
}

type FileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FileMapper
}

func NewFileRepository(db *gorm.DB) contract.FileRepository {
	return &FileRepositoryImpl{
		db:     db,
		mapper: mapper.NewFileMapper(),
	}
}

func (r *FileRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FileRepositoryImpl) Create(ctx context.Context, file *entity.FileRecord) error {
	m := r.mapper.ToModel(file)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return contract.ErrDuplicateFileRef
		}
		return err
	}
	*file = *r.mapper.ToEntity(m)
	return nil
}

func (r *FileRepositoryImpl) FindByFileRef(ctx context.Context, fileRef string) (*entity.FileRecord, error) {
	var m model.File
	if err := r.db.WithContext(ctx).Where("file_ref = ?", fileRef).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FileRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FileRecord, error) {
	var models []*model.File
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FileRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.File{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FileRepositoryImpl) DistinctValues(ctx context.Context, facetColumn string, specs ...specification.Specification) ([]string, error) {
	col, ok := facetColumns[facetColumn]
	if !ok {
		return nil, fmt.Errorf("unknown facet column: %s", facetColumn)
	}

	var values []string
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.File{}), specs...)
	err := query.
		Where(facetColumn + " IS NOT NULL").
		Distinct(col.Expr).
		Order(col.Expr).
		Pluck(col.Expr, &values).Error
	if err != nil {
		return nil, err
	}
	if col.Numeric {
		sortNumericValues(values)
	}
	return values, nil
}

// sortNumericValues orders numeric facet values that arrive as text, so
// "10" lists after "2". Non-numeric strays sort last, lexically.
func sortNumericValues(values []string) {
	sort.Slice(values, func(i, j int) bool {
		a, aerr := strconv.Atoi(values[i])
		b, berr := strconv.Atoi(values[j])
		if aerr != nil || berr != nil {
			if (aerr == nil) != (berr == nil) {
				return aerr == nil
			}
			return values[i] < values[j]
		}
		return a < b
	})
}
