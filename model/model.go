// Package model 定义因子模型（矩阵分解）的领域契约。
//
// 训练器本身是外部系统（iALS/BPR 等离线训练任务），本包只约定
// 召回链路需要的最小接口：拟合入口、批量推荐、可读的用户/物品因子矩阵。
package model

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/divkit/sparse"
)

// FactorModel 是隐因子模型的统一接口。
//
// 工程特征（与 MF 召回一致）：
//   - 实时性：好（离线训练，在线查表）
//   - 计算复杂度：低（向量点积）
//
// 注意：UserFactors/ItemFactors 返回的是模型内部矩阵的共享引用，
// 调用方可以就地修改（如 recall.Engine.MaskItems 的破坏性掩码），
// 修改对共享同一模型实例的所有调用方可见。
type FactorModel interface {
	// Fit 用（已加权的）交互矩阵拟合模型
	Fit(ctx context.Context, train *sparse.Matrix) error

	// Recommend 批量推荐：对每个用户返回排序后的物品索引与分数，
	// filter 的每行是对应用户需要排除的物品（通常为已交互物品）。
	// n 为每个用户返回的物品数上限。
	Recommend(ctx context.Context, userIDs []int, filter *sparse.Matrix, n int) (ids [][]int, scores [][]float64, err error)

	// UserFactors 返回用户因子矩阵（行 = 用户索引），共享引用
	UserFactors() *mat.Dense

	// ItemFactors 返回物品因子矩阵（行 = 物品索引），共享引用
	ItemFactors() *mat.Dense
}
