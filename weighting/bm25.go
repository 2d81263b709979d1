// Package weighting 提供训练前的交互矩阵加权变换。
package weighting

import (
	"fmt"
	"math"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/sparse"
)

// BM25 加权默认参数。K1 取 100 是隐式反馈场景的经验值（交互计数远大于文本词频），
// B 控制长度归一化强度，取值范围 [0, 1]。
const (
	DefaultK1 = 100.0
	DefaultB  = 0.8
)

// BM25 是交互矩阵的 BM25 加权器：在矩阵分解训练前，
// 按 TF-IDF 风格重加权交互权重，抑制高活跃用户/头部物品的支配作用。
//
// 纯函数：不修改输入矩阵，严格保持稀疏结构（零仍为零）。
// 可安全并发复用同一实例。
type BM25 struct {
	// K1 饱和系数，越大饱和越慢
	K1 float64

	// B 长度归一化系数，0 = 不归一化，1 = 完全归一化
	B float64
}

// NewBM25 创建默认参数（K1=100, B=0.8）的加权器。
func NewBM25() *BM25 {
	return &BM25{K1: DefaultK1, B: DefaultB}
}

// Weight 对交互矩阵做 BM25 加权，返回同形状的新矩阵。
//
// 算法在转置视图上进行（原矩阵的列视作“文档”）：
//  1. N = 转置后的行数
//  2. idf[j] = ln(N) − ln(1 + df[j])，df 为转置视图第 j 列的非零元素个数
//  3. rowLen[i] = 转置视图第 i 行非零权重之和，avgLen 为其均值
//  4. lengthNorm[i] = (1 − B) + B · rowLen[i] / avgLen
//  5. 新权重 = w · (K1+1) / (K1·lengthNorm[i] + w) · idf[j]
//  6. 转置回原方向
//
// 注意：N 很小时 idf 可能为负（如 N=1 时 idf = −ln 2），
// 此处按公式原样传播，不视为错误。
func (w *BM25) Weight(m *sparse.Matrix) (*sparse.Matrix, error) {
	if m == nil {
		return nil, core.NewDomainError(core.ModuleWeighting, core.ErrorCodeInvalidInput,
			"weighting: nil matrix")
	}
	if w.B < 0 || w.B > 1 {
		return nil, core.NewDomainError(core.ModuleWeighting, core.ErrorCodeInvalidInput,
			fmt.Sprintf("weighting: B must be in [0, 1], got %v", w.B))
	}

	t := m.Transpose()
	if t.NNZ() == 0 {
		// 空矩阵：返回同形状空拷贝
		return m.Clone(), nil
	}

	n := float64(t.Rows())
	df := t.ColNNZ()
	idf := make([]float64, len(df))
	for j, d := range df {
		idf[j] = math.Log(n) - math.Log1p(float64(d))
	}

	rowLen := t.RowSums()
	var avgLen float64
	for _, l := range rowLen {
		avgLen += l
	}
	avgLen /= float64(len(rowLen))

	lengthNorm := make([]float64, len(rowLen))
	for i, l := range rowLen {
		lengthNorm[i] = (1 - w.B) + w.B*l/avgLen
	}

	entries := make([]sparse.Entry, 0, t.NNZ())
	t.Iterate(func(row, col int, v float64) {
		weighted := v * (w.K1 + 1) / (w.K1*lengthNorm[row] + v) * idf[col]
		entries = append(entries, sparse.Entry{Row: row, Col: col, Value: weighted})
	})

	weighted, err := sparse.NewFromEntries(t.Rows(), t.Cols(), entries)
	if err != nil {
		return nil, err
	}
	return weighted.Transpose(), nil
}
