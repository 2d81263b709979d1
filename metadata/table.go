package metadata

import (
	"context"
	"fmt"

	"github.com/rushteam/divkit/core"
)

// Table 是内存中的物品元数据表，按物品索引寻址。
// 构建后只读，可安全并发使用。
type Table struct {
	categories []string
	embeddings [][]float64
}

// NewTable 构建内存元数据表。
// categories 与 embeddings 必须等长（DIMENSION_MISMATCH），
// 所有嵌入向量维度必须一致（INVALID_INPUT）。
func NewTable(categories []string, embeddings [][]float64) (*Table, error) {
	if len(categories) == 0 {
		return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeInvalidInput,
			"metadata: empty table")
	}
	if len(categories) != len(embeddings) {
		return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("metadata: %d categories vs %d embeddings", len(categories), len(embeddings)))
	}
	dim := len(embeddings[0])
	for i, e := range embeddings {
		if len(e) != dim {
			return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeInvalidInput,
				fmt.Sprintf("metadata: embedding %d has length %d, want %d", i, len(e), dim))
		}
	}
	return &Table{categories: categories, embeddings: embeddings}, nil
}

func (t *Table) Name() string { return "table" }

func (t *Table) Len() int { return len(t.categories) }

func (t *Table) Categories(_ context.Context) ([]string, error) {
	out := make([]string, len(t.categories))
	copy(out, t.categories)
	return out, nil
}

func (t *Table) Embeddings(_ context.Context, itemIndices []int) ([][]float64, error) {
	out := make([][]float64, len(itemIndices))
	for i, idx := range itemIndices {
		if idx < 0 || idx >= len(t.embeddings) {
			return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeDimensionMismatch,
				fmt.Sprintf("metadata: item index %d out of range [0, %d)", idx, len(t.embeddings)))
		}
		out[i] = t.embeddings[idx]
	}
	return out, nil
}

var _ Catalog = (*Table)(nil)
