package implementation

import (
	"context"
	"reflect"
	"testing"
)

func TestSortNumericValues(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{
			name:   "seasons sort numerically not lexically",
			values: []string{"1", "10", "11", "2"},
			want:   []string{"1", "2", "10", "11"},
		},
		{
			name:   "already sorted stays put",
			values: []string{"1", "2", "3"},
			want:   []string{"1", "2", "3"},
		},
		{
			name:   "non-numeric strays sort last",
			values: []string{"x", "10", "2"},
			want:   []string{"2", "10", "x"},
		},
		{
			name:   "empty",
			values: []string{},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sortNumericValues(tt.values)
			if !reflect.DeepEqual(tt.values, tt.want) {
				t.Errorf("sorted = %v, want %v", tt.values, tt.want)
			}
		})
	}
}

func TestDistinctValuesRejectsUnknownFacet(t *testing.T) {
	repo := &FileRepositoryImpl{}

	if _, err := repo.DistinctValues(context.Background(), "file_ref"); err == nil {
		t.Error("DistinctValues accepted a non-facet column, want error")
	}
}

func TestNumericFacetColumnsAreMarked(t *testing.T) {
	for facet, col := range facetColumns {
		numeric := facet == "season" || facet == "episode"
		if col.Numeric != numeric {
			t.Errorf("facet %q Numeric = %v, want %v", facet, col.Numeric, numeric)
		}
	}
}
