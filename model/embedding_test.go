package model

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/sparse"
)

func newTestModel(t *testing.T) *EmbeddingModel {
	t.Helper()
	// 3 用户 × 2 因子，4 物品 × 2 因子
	userF := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})
	itemF := mat.NewDense(4, 2, []float64{
		2, 0, // 物品 0：用户 0 得分 2
		0, 3, // 物品 1：用户 1 得分 3
		1, 1,
		0, 0,
	})
	m, err := NewEmbeddingModel(userF, itemF)
	if err != nil {
		t.Fatalf("NewEmbeddingModel() error = %v", err)
	}
	return m
}

func TestNewEmbeddingModel_DimensionMismatch(t *testing.T) {
	_, err := NewEmbeddingModel(mat.NewDense(2, 3, nil), mat.NewDense(2, 2, nil))
	if !core.IsDimensionMismatch(err) {
		t.Fatalf("error = %v, want DIMENSION_MISMATCH", err)
	}
}

func TestRecommend_RanksByDotProduct(t *testing.T) {
	m := newTestModel(t)
	ids, scores, err := m.Recommend(context.Background(), []int{0}, nil, 4)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	// 用户 0 = (1, 0)：分数 [2, 0, 1, 0] → 排序 2, 0(物品2 得 1), 平手 1 和 3 按索引
	want := []int{0, 2, 1, 3}
	for i := range want {
		if ids[0][i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids[0], want)
		}
	}
	if scores[0][0] != 2 || scores[0][1] != 1 {
		t.Fatalf("scores = %v, want [2 1 0 0]", scores[0])
	}
}

func TestRecommend_ExcludesFilteredItems(t *testing.T) {
	m := newTestModel(t)
	// 用户 0 已交互物品 0
	filter, _ := sparse.NewFromEntries(3, 4, []sparse.Entry{{Row: 0, Col: 0, Value: 1}})
	ids, _, err := m.Recommend(context.Background(), []int{0}, filter, 4)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for _, id := range ids[0] {
		if id == 0 {
			t.Fatalf("filtered item 0 present in %v", ids[0])
		}
	}
	if len(ids[0]) != 3 {
		t.Fatalf("len = %d, want 3", len(ids[0]))
	}
}

func TestRecommend_BatchUsers(t *testing.T) {
	m := newTestModel(t)
	ids, scores, err := m.Recommend(context.Background(), []int{0, 1, 2}, nil, 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(ids) != 3 || len(scores) != 3 {
		t.Fatalf("batch sizes = %d, %d, want 3, 3", len(ids), len(scores))
	}
	// 用户 1 = (0, 1)：最高分物品 1（得 3）
	if ids[1][0] != 1 || math.Abs(scores[1][0]-3) > 1e-12 {
		t.Fatalf("user 1 top = (%d, %v), want (1, 3)", ids[1][0], scores[1][0])
	}
}

func TestRecommend_UserOutOfRange(t *testing.T) {
	m := newTestModel(t)
	_, _, err := m.Recommend(context.Background(), []int{5}, nil, 2)
	if !core.IsDimensionMismatch(err) {
		t.Fatalf("error = %v, want DIMENSION_MISMATCH", err)
	}
}

func TestFit_ValidatesShape(t *testing.T) {
	m := newTestModel(t)
	ok, _ := sparse.NewFromEntries(3, 4, nil)
	if err := m.Fit(context.Background(), ok); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	bad, _ := sparse.NewFromEntries(3, 5, nil)
	if err := m.Fit(context.Background(), bad); !core.IsDimensionMismatch(err) {
		t.Fatalf("Fit() error = %v, want DIMENSION_MISMATCH", err)
	}
}
