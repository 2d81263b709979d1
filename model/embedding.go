package model

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/sparse"
)

// EmbeddingModel 是查表式的因子模型实现：因子矩阵来自离线训练产物，
// 在线只做点积打分。实现 FactorModel 接口。
//
// Fit 只做形状校验（训练在离线侧完成），Recommend 并发打分多个用户。
type EmbeddingModel struct {
	userFactors *mat.Dense
	itemFactors *mat.Dense
}

// NewEmbeddingModel 从离线训练得到的因子矩阵构建模型。
// 两个矩阵共享给模型（不拷贝），列数（因子维度）必须一致。
func NewEmbeddingModel(userFactors, itemFactors *mat.Dense) (*EmbeddingModel, error) {
	if userFactors == nil || itemFactors == nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput,
			"model: nil factor matrix")
	}
	_, uk := userFactors.Dims()
	_, ik := itemFactors.Dims()
	if uk != ik {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("model: factor dimensions disagree: user %d, item %d", uk, ik))
	}
	return &EmbeddingModel{userFactors: userFactors, itemFactors: itemFactors}, nil
}

// Fit 校验交互矩阵形状与因子表一致。
// 实际训练由外部离线任务完成，这里不更新因子。
func (m *EmbeddingModel) Fit(_ context.Context, train *sparse.Matrix) error {
	if train == nil {
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "model: nil train matrix")
	}
	users, _ := m.userFactors.Dims()
	items, _ := m.itemFactors.Dims()
	if train.Rows() != users || train.Cols() != items {
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("model: train shape (%d, %d) disagrees with factors (%d, %d)",
				train.Rows(), train.Cols(), users, items))
	}
	return nil
}

// Recommend 批量推荐：用户并发打分（errgroup），
// 每个用户的分数为 u·Iᵀ，排除 filter 对应行的非零物品，
// 降序排序，平手按物品索引稳定排列。
func (m *EmbeddingModel) Recommend(
	ctx context.Context,
	userIDs []int,
	filter *sparse.Matrix,
	n int,
) ([][]int, [][]float64, error) {
	users, _ := m.userFactors.Dims()
	items, _ := m.itemFactors.Dims()
	for _, u := range userIDs {
		if u < 0 || u >= users {
			return nil, nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeDimensionMismatch,
				fmt.Sprintf("model: user index %d out of range [0, %d)", u, users))
		}
	}
	if filter != nil && filter.Cols() != items {
		return nil, nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("model: filter has %d columns, item factors have %d rows", filter.Cols(), items))
	}
	if n <= 0 || n > items {
		n = items
	}

	ids := make([][]int, len(userIDs))
	scores := make([][]float64, len(userIDs))

	eg, _ := errgroup.WithContext(ctx)
	for i, u := range userIDs {
		i, u := i, u
		eg.Go(func() error {
			userVec := m.userFactors.RawRowView(u)

			excluded := make(map[int]bool)
			if filter != nil && u < filter.Rows() {
				cols, _ := filter.Row(u)
				for _, c := range cols {
					excluded[c] = true
				}
			}

			candidates := make([]int, 0, items)
			for j := 0; j < items; j++ {
				if !excluded[j] {
					candidates = append(candidates, j)
				}
			}

			s := make([]float64, len(candidates))
			for k, j := range candidates {
				s[k] = floats.Dot(userVec, m.itemFactors.RawRowView(j))
			}

			order := make([]int, len(candidates))
			for k := range order {
				order[k] = k
			}
			sort.SliceStable(order, func(a, b int) bool { return s[order[a]] > s[order[b]] })

			top := n
			if top > len(order) {
				top = len(order)
			}
			ids[i] = make([]int, top)
			scores[i] = make([]float64, top)
			for k := 0; k < top; k++ {
				ids[i][k] = candidates[order[k]]
				scores[i][k] = s[order[k]]
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return ids, scores, nil
}

// UserFactors 返回用户因子矩阵的共享引用。
func (m *EmbeddingModel) UserFactors() *mat.Dense { return m.userFactors }

// ItemFactors 返回物品因子矩阵的共享引用。
func (m *EmbeddingModel) ItemFactors() *mat.Dense { return m.itemFactors }

var _ FactorModel = (*EmbeddingModel)(nil)
