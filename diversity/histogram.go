// Package diversity 提供推荐结果多样性的统计度量：
// 类别直方图、Gini 系数、有效目录规模（ECS）、Shannon 指数、
// 分布表与 Lorenz 曲线数据。
//
// 所有计算都是纯函数，只产出数据，不做任何渲染/落盘，
// 可安全并发使用。
package diversity

import (
	"sort"

	"github.com/rushteam/divkit/core"
)

// Bin 是直方图中的一个类别桶。
type Bin struct {
	Category string
	Count    int
}

// Histogram 是按计数降序排列的类别直方图。
// 相同计数的类别按首次出现顺序排列（稳定排序）。
// 构建后只读。
type Histogram struct {
	bins []Bin
	sum  int
}

// FromLabels 从标量类别序列构建直方图。
// 空输入返回 INVALID_INPUT。
func FromLabels(labels []string) (*Histogram, error) {
	if len(labels) == 0 {
		return nil, core.NewDomainError(core.ModuleDiversity, core.ErrorCodeInvalidInput,
			"diversity: empty label sequence")
	}
	return build(labels), nil
}

// FromLabelSets 从多标签序列构建直方图：每个元素是一组类别标签，
// 计数前先展平为单一标签流（如一部电影同时属于多个题材）。
// 展平后为空（外层为空或所有内层为空）返回 INVALID_INPUT。
func FromLabelSets(sets [][]string) (*Histogram, error) {
	var flat []string
	for _, set := range sets {
		flat = append(flat, set...)
	}
	if len(flat) == 0 {
		return nil, core.NewDomainError(core.ModuleDiversity, core.ErrorCodeInvalidInput,
			"diversity: empty label sequence after flattening")
	}
	return build(flat), nil
}

// FromCounts 从已有的 (类别, 计数) 构建直方图，用于直接消费外部统计结果。
// 计数为负返回 INVALID_INPUT；长度不一致返回 DIMENSION_MISMATCH。
func FromCounts(categories []string, counts []int) (*Histogram, error) {
	if len(categories) == 0 {
		return nil, core.NewDomainError(core.ModuleDiversity, core.ErrorCodeInvalidInput,
			"diversity: empty histogram")
	}
	if len(categories) != len(counts) {
		return nil, core.NewDomainError(core.ModuleDiversity, core.ErrorCodeDimensionMismatch,
			"diversity: categories and counts length mismatch")
	}
	h := &Histogram{bins: make([]Bin, len(categories))}
	for i, c := range categories {
		if counts[i] < 0 {
			return nil, core.NewDomainError(core.ModuleDiversity, core.ErrorCodeInvalidInput,
				"diversity: negative count")
		}
		h.bins[i] = Bin{Category: c, Count: counts[i]}
		h.sum += counts[i]
	}
	sortBins(h.bins)
	return h, nil
}

func build(labels []string) *Histogram {
	counts := make(map[string]int, len(labels))
	order := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := counts[l]; !ok {
			order = append(order, l)
		}
		counts[l]++
	}
	h := &Histogram{bins: make([]Bin, 0, len(order)), sum: len(labels)}
	for _, c := range order {
		h.bins = append(h.bins, Bin{Category: c, Count: counts[c]})
	}
	sortBins(h.bins)
	return h
}

// sortBins 按计数降序稳定排序，平手保持首次出现顺序。
func sortBins(bins []Bin) {
	sort.SliceStable(bins, func(i, j int) bool {
		return bins[i].Count > bins[j].Count
	})
}

// Len 返回类别数 n。
func (h *Histogram) Len() int { return len(h.bins) }

// Sum 返回观测总数 S（展平后的原始标签数）。
func (h *Histogram) Sum() int { return h.sum }

// Counts 返回降序计数向量的拷贝。
func (h *Histogram) Counts() []int {
	out := make([]int, len(h.bins))
	for i, b := range h.bins {
		out[i] = b.Count
	}
	return out
}

// Bins 返回降序排列的类别桶的拷贝。
func (h *Histogram) Bins() []Bin {
	out := make([]Bin, len(h.bins))
	copy(out, h.bins)
	return out
}
