package contract

import (
	"context"
	"errors"

	"autofilter-be/internal/entity"
	"autofilter-be/internal/repository/specification"
)

// ErrDuplicateFileRef is returned by Create when the file ref is already
// catalogued. Re-posted files are skipped, not errors, so callers treat
// this as a no-op signal.
var ErrDuplicateFileRef = errors.New("file ref already indexed")

type FileRepository interface {
	Create(ctx context.Context, file *entity.FileRecord) error
	FindByFileRef(ctx context.Context, fileRef string) (*entity.FileRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.FileRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// DistinctValues lists the distinct non-null values of a facet column
	// under the given filters. Only whitelisted facet columns are allowed.
	DistinctValues(ctx context.Context, facetColumn string, specs ...specification.Specification) ([]string, error)
}
