package diversity

import "math"

// Gini 计算直方图的 Gini 系数，取值 [0, 1)：
// 0 表示各类别完全均匀，越接近 1 表示越集中。
//
// 离散 Lorenz 曲线下面积的等价形式：对降序计数 h（总和 S、类别数 n），
// area = Σ_{i=1..n} h_i·i / (S·n)，gini = 1 − 2·area + 1/n。
// 降序排列是秩加权的前提（直方图构建时已保证）。
// 全零直方图定义为 0。
func (h *Histogram) Gini() float64 {
	n := len(h.bins)
	if n == 0 || h.sum == 0 {
		return 0
	}
	var area float64
	for i, b := range h.bins {
		area += float64(b.Count) * float64(i+1)
	}
	area /= float64(h.sum) * float64(n)
	return 1 - 2*area + 1/float64(n)
}

// EffectiveCatalogSize 计算有效目录规模（ECS）：对降序概率质量 p，
// ecs = 2·Σ_{i=1..n} p_i·i − 1。
//
// 注意：这是一个秩加权的集中度统计量，并不是生态学/信息论里
// 基于熵或逆 Simpson 的 “有效类别数”。单类别时 ECS = 1，
// 完全均匀时趋向 n。全零直方图定义为 0。
func (h *Histogram) EffectiveCatalogSize() float64 {
	if len(h.bins) == 0 || h.sum == 0 {
		return 0
	}
	var ecs float64
	for i, b := range h.bins {
		p := float64(b.Count) / float64(h.sum)
		ecs += p * float64(i+1)
	}
	return 2*ecs - 1
}

// ShannonIndex 计算直方图的 Shannon 熵 −Σ p·log(p)。
// base <= 0 时使用自然对数；单类别时为 0，n 类均匀分布时为 log(n)。
// 计数为 0 的类别按惯例跳过（lim p→0 p·log p = 0）。
func (h *Histogram) ShannonIndex(base float64) float64 {
	if len(h.bins) == 0 || h.sum == 0 {
		return 0
	}
	var ent float64
	for _, b := range h.bins {
		if b.Count == 0 {
			continue
		}
		p := float64(b.Count) / float64(h.sum)
		ent -= p * math.Log(p)
	}
	if base > 0 {
		ent /= math.Log(base)
	}
	return ent
}

// DistributionEntry 是分布表的一行：类别、原始计数、占比。
type DistributionEntry struct {
	Category   string
	Count      int
	Percentage float64
}

// Distribution 返回按计数降序的完整分布表，占比之和为 1（浮点容差内）。
// 只产出数据，渲染（柱状图等）由外部完成。全零直方图占比均为 0。
func (h *Histogram) Distribution() []DistributionEntry {
	out := make([]DistributionEntry, len(h.bins))
	for i, b := range h.bins {
		var pct float64
		if h.sum > 0 {
			pct = float64(b.Count) / float64(h.sum)
		}
		out[i] = DistributionEntry{Category: b.Category, Count: b.Count, Percentage: pct}
	}
	return out
}
