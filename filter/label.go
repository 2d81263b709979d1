package filter

import (
	"context"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/pkg/dsl"
)

// LabelFilter 基于 CEL 表达式过滤物品：表达式为 true 时过滤掉该物品。
//
// 示例：
//   - `label.cold_start == "true"` → 过滤冷启动兜底结果
//   - `item.score < 0.1` → 过滤低分结果
//   - `label.category == "adult"` → 过滤指定类别
type LabelFilter struct {
	// Expr 是 CEL 过滤表达式，空表达式不过滤任何物品
	Expr string
}

func (f *LabelFilter) Name() string {
	return "filter.label"
}

func (f *LabelFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" {
		return false, nil
	}
	return dsl.NewEval(item, rctx).Evaluate(f.Expr)
}

var _ Filter = (*LabelFilter)(nil)
