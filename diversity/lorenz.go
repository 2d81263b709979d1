package diversity

import "gonum.org/v1/gonum/floats"

// LorenzCurve 是 Lorenz 曲线的坐标数据：X 为均匀 [0, 1] 网格，
// Y 为升序累计份额（首点为 0）。曲线下方面积与 Gini 系数直接相关。
// 只产出数据，绘制由外部渲染器完成。
type LorenzCurve struct {
	X []float64
	Y []float64
}

// Lorenz 计算直方图的 Lorenz 曲线坐标：
// 计数升序排列后求累计和并按总数归一化，前置 0 点，
// 与等长的 [0, 1] 均匀网格配对。全零直方图的 Y 全为 0。
func (h *Histogram) Lorenz() LorenzCurve {
	n := len(h.bins)
	ascending := make([]float64, n)
	for i, b := range h.bins {
		// bins 为降序，倒序即升序
		ascending[n-1-i] = float64(b.Count)
	}

	y := make([]float64, n+1)
	if n > 0 {
		floats.CumSum(y[1:], ascending)
		if h.sum > 0 {
			floats.Scale(1/float64(h.sum), y[1:])
		}
	}

	x := make([]float64, n+1)
	floats.Span(x, 0, 1)
	return LorenzCurve{X: x, Y: y}
}
