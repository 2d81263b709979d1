package metadata

import (
	"context"
	"testing"

	"github.com/rushteam/divkit/core"
)

func TestTable_Validation(t *testing.T) {
	tests := []struct {
		name       string
		categories []string
		embeddings [][]float64
		wantCode   string
	}{
		{
			name:       "empty table",
			categories: nil,
			embeddings: nil,
			wantCode:   core.ErrorCodeInvalidInput,
		},
		{
			name:       "length mismatch",
			categories: []string{"a", "b"},
			embeddings: [][]float64{{1, 2}},
			wantCode:   core.ErrorCodeDimensionMismatch,
		},
		{
			name:       "ragged embeddings",
			categories: []string{"a", "b"},
			embeddings: [][]float64{{1, 2}, {1}},
			wantCode:   core.ErrorCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.categories, tt.embeddings)
			domainErr := core.GetDomainError(err)
			if domainErr == nil || domainErr.Code != tt.wantCode {
				t.Fatalf("NewTable error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestTable_Lookup(t *testing.T) {
	tbl, err := NewTable(
		[]string{"drama", "comedy", "drama"},
		[][]float64{{1, 0}, {0, 1}, {1, 1}},
	)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	ctx := context.Background()

	if tbl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tbl.Len())
	}

	cats, err := tbl.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	want := []string{"drama", "comedy", "drama"}
	for i := range want {
		if cats[i] != want[i] {
			t.Fatalf("Categories = %v, want %v", cats, want)
		}
	}

	embs, err := tbl.Embeddings(ctx, []int{2, 0})
	if err != nil {
		t.Fatalf("Embeddings: %v", err)
	}
	if embs[0][0] != 1 || embs[0][1] != 1 || embs[1][0] != 1 || embs[1][1] != 0 {
		t.Fatalf("Embeddings = %v", embs)
	}

	if _, err := tbl.Embeddings(ctx, []int{3}); !core.IsDimensionMismatch(err) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
}
