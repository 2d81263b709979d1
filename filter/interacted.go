package filter

import (
	"context"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/pkg/vocab"
	"github.com/rushteam/divkit/sparse"
)

// InteractedFilter 过滤掉用户在训练矩阵中已交互过的物品。
//
// 召回引擎内部已经排除训练交互，此过滤器用于热门召回（toppop）
// 等不经过交互矩阵的召回源。未知用户不过滤（冷启动没有交互历史）。
type InteractedFilter struct {
	Train *sparse.Matrix
	Users *vocab.Vocab
	Items *vocab.Vocab
}

func (f *InteractedFilter) Name() string {
	return "filter.interacted"
}

func (f *InteractedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if rctx == nil || rctx.UserID == "" {
		return false, nil
	}

	userID, ok := f.Users.Index(rctx.UserID)
	if !ok {
		return false, nil
	}
	itemID, ok := f.Items.Index(item.ID)
	if !ok {
		return false, nil
	}

	cols, _ := f.Train.Row(userID)
	for _, c := range cols {
		if c == itemID {
			return true, nil
		}
	}
	return false, nil
}

var _ Filter = (*InteractedFilter)(nil)
