// Package sparse 提供 CSR 格式的稀疏交互矩阵。
// 行 = 用户索引，列 = 物品索引，值 = 非负交互权重。
package sparse

import (
	"fmt"
	"sort"

	"github.com/rushteam/divkit/core"
)

// Entry 是一个稀疏矩阵非零元素（COO 三元组）。
type Entry struct {
	Row, Col int
	Value    float64
}

// Matrix 是 CSR（Compressed Sparse Row）稀疏矩阵。
// 构建后按约定不可变：所有变换（如 BM25 加权）返回新矩阵。
type Matrix struct {
	rows, cols int
	indptr     []int     // 长度 rows+1
	indices    []int     // 每个非零元素的列索引
	data       []float64 // 非零元素值
}

// NewFromEntries 从 COO 三元组构建 CSR 矩阵。
// 同一 (row, col) 出现多次时权重累加。越界条目返回 DIMENSION_MISMATCH。
func NewFromEntries(rows, cols int, entries []Entry) (*Matrix, error) {
	if rows < 0 || cols < 0 {
		return nil, core.NewDomainError(core.ModuleSparse, core.ErrorCodeInvalidInput,
			fmt.Sprintf("sparse: negative shape (%d, %d)", rows, cols))
	}
	for _, e := range entries {
		if e.Row < 0 || e.Row >= rows || e.Col < 0 || e.Col >= cols {
			return nil, core.NewDomainError(core.ModuleSparse, core.ErrorCodeDimensionMismatch,
				fmt.Sprintf("sparse: entry (%d, %d) out of shape (%d, %d)", e.Row, e.Col, rows, cols))
		}
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}
		return sorted[i].Col < sorted[j].Col
	})

	m := &Matrix{
		rows:    rows,
		cols:    cols,
		indptr:  make([]int, rows+1),
		indices: make([]int, 0, len(sorted)),
		data:    make([]float64, 0, len(sorted)),
	}
	prevRow, prevCol := -1, -1
	for _, e := range sorted {
		// 合并重复坐标
		if e.Row == prevRow && e.Col == prevCol {
			m.data[len(m.data)-1] += e.Value
			continue
		}
		for r := prevRow + 1; r <= e.Row; r++ {
			m.indptr[r] = len(m.indices)
		}
		m.indices = append(m.indices, e.Col)
		m.data = append(m.data, e.Value)
		prevRow, prevCol = e.Row, e.Col
	}
	for r := prevRow + 1; r <= rows; r++ {
		m.indptr[r] = len(m.indices)
	}
	return m, nil
}

// Rows 返回行数。
func (m *Matrix) Rows() int { return m.rows }

// Cols 返回列数。
func (m *Matrix) Cols() int { return m.cols }

// NNZ 返回非零元素数量。
func (m *Matrix) NNZ() int { return len(m.data) }

// At 返回 (i, j) 位置的值；零元素返回 0。
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return 0
	}
	start, end := m.indptr[i], m.indptr[i+1]
	pos := sort.SearchInts(m.indices[start:end], j)
	if pos < end-start && m.indices[start+pos] == j {
		return m.data[start+pos]
	}
	return 0
}

// Row 返回第 i 行的非零列索引与对应值。返回的 slice 是内部存储的切片，不应修改。
func (m *Matrix) Row(i int) (cols []int, values []float64) {
	if i < 0 || i >= m.rows {
		return nil, nil
	}
	start, end := m.indptr[i], m.indptr[i+1]
	return m.indices[start:end], m.data[start:end]
}

// RowSums 返回每行非零值之和。
func (m *Matrix) RowSums() []float64 {
	sums := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		start, end := m.indptr[i], m.indptr[i+1]
		for _, v := range m.data[start:end] {
			sums[i] += v
		}
	}
	return sums
}

// ColSums 返回每列非零值之和（物品流行度常用）。
func (m *Matrix) ColSums() []float64 {
	sums := make([]float64, m.cols)
	for i := 0; i < m.rows; i++ {
		start, end := m.indptr[i], m.indptr[i+1]
		for k := start; k < end; k++ {
			sums[m.indices[k]] += m.data[k]
		}
	}
	return sums
}

// ColNNZ 返回每列非零元素个数（BM25 的 df 统计）。
func (m *Matrix) ColNNZ() []int {
	counts := make([]int, m.cols)
	for _, j := range m.indices {
		counts[j]++
	}
	return counts
}

// Transpose 返回转置后的新矩阵，原矩阵不变。
func (m *Matrix) Transpose() *Matrix {
	t := &Matrix{
		rows:    m.cols,
		cols:    m.rows,
		indptr:  make([]int, m.cols+1),
		indices: make([]int, len(m.indices)),
		data:    make([]float64, len(m.data)),
	}
	// 计数每列非零数，做前缀和得到新 indptr
	for _, j := range m.indices {
		t.indptr[j+1]++
	}
	for j := 0; j < m.cols; j++ {
		t.indptr[j+1] += t.indptr[j]
	}
	next := make([]int, m.cols)
	copy(next, t.indptr[:m.cols])
	for i := 0; i < m.rows; i++ {
		start, end := m.indptr[i], m.indptr[i+1]
		for k := start; k < end; k++ {
			j := m.indices[k]
			pos := next[j]
			t.indices[pos] = i
			t.data[pos] = m.data[k]
			next[j]++
		}
	}
	return t
}

// Clone 返回深拷贝。
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{
		rows:    m.rows,
		cols:    m.cols,
		indptr:  make([]int, len(m.indptr)),
		indices: make([]int, len(m.indices)),
		data:    make([]float64, len(m.data)),
	}
	copy(c.indptr, m.indptr)
	copy(c.indices, m.indices)
	copy(c.data, m.data)
	return c
}

// Iterate 按行序遍历所有非零元素。
func (m *Matrix) Iterate(fn func(row, col int, value float64)) {
	for i := 0; i < m.rows; i++ {
		start, end := m.indptr[i], m.indptr[i+1]
		for k := start; k < end; k++ {
			fn(i, m.indices[k], m.data[k])
		}
	}
}
