package weighting

import (
	"math"
	"testing"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/sparse"
)

func TestBM25_PreservesSparsityPattern(t *testing.T) {
	// 4 个物品（转置视图 N=4），每个用户最多交互 2 个物品：
	// df ≤ 2，idf = ln 4 − ln(1+df) > 0，所有非零值保持非零
	entries := []sparse.Entry{
		{Row: 0, Col: 0, Value: 3},
		{Row: 0, Col: 2, Value: 1},
		{Row: 1, Col: 1, Value: 5},
		{Row: 2, Col: 0, Value: 2},
		{Row: 2, Col: 3, Value: 4},
		{Row: 3, Col: 1, Value: 1},
	}
	m, err := sparse.NewFromEntries(4, 4, entries)
	if err != nil {
		t.Fatalf("NewFromEntries() error = %v", err)
	}

	out, err := NewBM25().Weight(m)
	if err != nil {
		t.Fatalf("Weight() error = %v", err)
	}

	if out.Rows() != m.Rows() || out.Cols() != m.Cols() {
		t.Fatalf("shape changed: got (%d, %d), want (%d, %d)", out.Rows(), out.Cols(), m.Rows(), m.Cols())
	}
	if out.NNZ() != m.NNZ() {
		t.Fatalf("nnz changed: got %d, want %d", out.NNZ(), m.NNZ())
	}
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			in, res := m.At(i, j), out.At(i, j)
			if in == 0 && res != 0 {
				t.Errorf("zero entry (%d, %d) became %v", i, j, res)
			}
			if in != 0 && res == 0 {
				t.Errorf("nonzero entry (%d, %d) became zero", i, j)
			}
		}
	}
}

func TestBM25_ZeroIDFCollapsesValues(t *testing.T) {
	// 3 个物品（转置视图 N=3），用户 0 和 2 各交互 2 个物品：
	// 这些用户列 df=2，idf = ln 3 − ln 3 = 0，对应非零值按公式精确归零。
	// 稀疏结构（NNZ）仍然保留，只有数值坍缩为 0。
	entries := []sparse.Entry{
		{Row: 0, Col: 0, Value: 3},
		{Row: 0, Col: 2, Value: 1},
		{Row: 1, Col: 1, Value: 5},
		{Row: 2, Col: 0, Value: 2},
		{Row: 2, Col: 2, Value: 4},
		{Row: 3, Col: 1, Value: 1},
	}
	m, err := sparse.NewFromEntries(4, 3, entries)
	if err != nil {
		t.Fatalf("NewFromEntries() error = %v", err)
	}

	out, err := NewBM25().Weight(m)
	if err != nil {
		t.Fatalf("Weight() error = %v", err)
	}
	if out.NNZ() != m.NNZ() {
		t.Fatalf("nnz changed: got %d, want %d", out.NNZ(), m.NNZ())
	}

	// df=2 的用户（0、2）的所有交互被加权为 0
	for _, pos := range [][2]int{{0, 0}, {0, 2}, {2, 0}, {2, 2}} {
		if v := out.At(pos[0], pos[1]); v != 0 {
			t.Errorf("At(%d, %d) = %v, want exactly 0 (idf = 0)", pos[0], pos[1], v)
		}
	}
	// df=1 的用户（1、3）idf = ln 3 − ln 2 > 0，保持非零
	for _, pos := range [][2]int{{1, 1}, {3, 1}} {
		if v := out.At(pos[0], pos[1]); v <= 0 {
			t.Errorf("At(%d, %d) = %v, want strictly positive", pos[0], pos[1], v)
		}
	}
}

func TestBM25_PositiveWeightsWhenIDFPositive(t *testing.T) {
	// 4 个物品、每个用户只交互一个物品：转置视图 N=4，df=1，idf = ln(4) − ln(2) > 0
	entries := []sparse.Entry{
		{Row: 0, Col: 0, Value: 2},
		{Row: 1, Col: 1, Value: 3},
		{Row: 2, Col: 2, Value: 1},
		{Row: 3, Col: 3, Value: 5},
	}
	m, _ := sparse.NewFromEntries(4, 4, entries)
	out, err := NewBM25().Weight(m)
	if err != nil {
		t.Fatalf("Weight() error = %v", err)
	}
	out.Iterate(func(row, col int, v float64) {
		if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			t.Errorf("entry (%d, %d) = %v, want strictly positive finite", row, col, v)
		}
	})
}

func TestBM25_SingleEntryNegativeIDF(t *testing.T) {
	// 单个非零元素：转置视图 N=1，idf = ln(1) − ln(2) = −ln 2。
	// 公式原样传播负 idf，不报错；结果必须有限且非零。
	m, _ := sparse.NewFromEntries(1, 1, []sparse.Entry{{Row: 0, Col: 0, Value: 2}})
	out, err := NewBM25().Weight(m)
	if err != nil {
		t.Fatalf("Weight() error = %v", err)
	}
	got := out.At(0, 0)
	if math.IsNaN(got) || math.IsInf(got, 0) || got == 0 {
		t.Fatalf("At(0, 0) = %v, want finite nonzero", got)
	}
	// w·(K1+1)/(K1·lengthNorm + w)·idf，lengthNorm = 1（单行即均值）
	want := 2.0 * 101.0 / 102.0 * -math.Log(2)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("At(0, 0) = %v, want %v", got, want)
	}
}

func TestBM25_DoesNotMutateInput(t *testing.T) {
	entries := []sparse.Entry{
		{Row: 0, Col: 0, Value: 3},
		{Row: 1, Col: 1, Value: 5},
	}
	m, _ := sparse.NewFromEntries(2, 2, entries)
	if _, err := NewBM25().Weight(m); err != nil {
		t.Fatalf("Weight() error = %v", err)
	}
	if m.At(0, 0) != 3 || m.At(1, 1) != 5 {
		t.Fatalf("input matrix mutated: At(0,0)=%v At(1,1)=%v", m.At(0, 0), m.At(1, 1))
	}
}

func TestBM25_InvalidB(t *testing.T) {
	m, _ := sparse.NewFromEntries(1, 1, []sparse.Entry{{Row: 0, Col: 0, Value: 1}})
	w := &BM25{K1: 100, B: 1.5}
	if _, err := w.Weight(m); !core.IsInvalidInput(err) {
		t.Fatalf("Weight() error = %v, want INVALID_INPUT", err)
	}
}

func TestBM25_EmptyMatrix(t *testing.T) {
	m, _ := sparse.NewFromEntries(3, 3, nil)
	out, err := NewBM25().Weight(m)
	if err != nil {
		t.Fatalf("Weight() error = %v", err)
	}
	if out.NNZ() != 0 || out.Rows() != 3 || out.Cols() != 3 {
		t.Fatalf("got nnz=%d shape=(%d,%d), want empty (3,3)", out.NNZ(), out.Rows(), out.Cols())
	}
}
