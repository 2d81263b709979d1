// Package eval 提供隐式反馈推荐的离线排序评估：AUC@k 与 precision@k。
// 口径：对每个在测试集中有交互的用户，在排除训练交互后的 top-k
// 推荐列表上计算指标，再对用户取均值。
package eval

import (
	"context"
	"fmt"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/model"
	"github.com/rushteam/divkit/sparse"
)

// testUsers 返回测试集中有交互的用户索引及其测试物品集合。
func testUsers(test *sparse.Matrix) ([]int, []map[int]bool) {
	var users []int
	var likes []map[int]bool
	for u := 0; u < test.Rows(); u++ {
		cols, _ := test.Row(u)
		if len(cols) == 0 {
			continue
		}
		set := make(map[int]bool, len(cols))
		for _, c := range cols {
			set[c] = true
		}
		users = append(users, u)
		likes = append(likes, set)
	}
	return users, likes
}

func validate(m model.FactorModel, train, test *sparse.Matrix, k int) error {
	if m == nil || train == nil || test == nil {
		return core.NewDomainError(core.ModuleEval, core.ErrorCodeInvalidInput,
			"eval: nil model or matrix")
	}
	if train.Rows() != test.Rows() || train.Cols() != test.Cols() {
		return core.NewDomainError(core.ModuleEval, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("eval: train shape (%d, %d) disagrees with test (%d, %d)",
				train.Rows(), train.Cols(), test.Rows(), test.Cols()))
	}
	if k <= 0 {
		return core.NewDomainError(core.ModuleEval, core.ErrorCodeInvalidInput,
			fmt.Sprintf("eval: k must be positive, got %d", k))
	}
	return nil
}

// PrecisionAtK 计算 precision@k：每个用户 top-k 推荐中测试集命中数
// 除以 min(k, 测试物品数)，对有测试交互的用户取均值。
// 测试集为空（无任何用户有交互）返回 0。
func PrecisionAtK(ctx context.Context, m model.FactorModel, train, test *sparse.Matrix, k int) (float64, error) {
	if err := validate(m, train, test, k); err != nil {
		return 0, err
	}
	users, likes := testUsers(test)
	if len(users) == 0 {
		return 0, nil
	}

	ids, _, err := m.Recommend(ctx, users, train, k)
	if err != nil {
		return 0, err
	}

	var total float64
	for i := range users {
		hits := 0
		for _, id := range ids[i] {
			if likes[i][id] {
				hits++
			}
		}
		denom := k
		if len(likes[i]) < denom {
			denom = len(likes[i])
		}
		total += float64(hits) / float64(denom)
	}
	return total / float64(len(users)), nil
}

// AUCAtK 计算截断 AUC@k：在每个用户的 top-k 推荐列表内，
// 统计（正例，负例）对中正例排在前面的比例，对用户取均值。
// 列表内全为正例或全为负例时该用户记 0.5（无信息）。
func AUCAtK(ctx context.Context, m model.FactorModel, train, test *sparse.Matrix, k int) (float64, error) {
	if err := validate(m, train, test, k); err != nil {
		return 0, err
	}
	users, likes := testUsers(test)
	if len(users) == 0 {
		return 0, nil
	}

	ids, _, err := m.Recommend(ctx, users, train, k)
	if err != nil {
		return 0, err
	}

	var total float64
	for i := range users {
		var pos, auc float64
		var neg float64
		for _, id := range ids[i] {
			if likes[i][id] {
				pos++
			} else {
				// 每个负例累加排在它前面的正例数
				auc += pos
				neg++
			}
		}
		if pos == 0 || neg == 0 {
			total += 0.5
			continue
		}
		total += auc / (pos * neg)
	}
	return total / float64(len(users)), nil
}
