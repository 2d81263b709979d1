package rerank

import (
	"context"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/pipeline"
)

// CategoryDedup 是一个简单的多样性 ReRank 节点：按类别去重（保留首个出现的类别）。
// 类别来源优先级：
// - label["category"].Value
// - meta["category"] (string)
//
// 没有类别信息的物品不参与去重，直接保留。
type CategoryDedup struct {
	LabelKey string // 默认 "category"
}

func (n *CategoryDedup) Name() string {
	return "rerank.category_dedup"
}

func (n *CategoryDedup) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *CategoryDedup) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = "category"
	}

	seen := make(map[string]bool, 32)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}

		cate := ""
		if it.Labels != nil {
			if lbl, ok := it.Labels[key]; ok {
				cate = lbl.Value
			}
		}
		if cate == "" && it.Meta != nil {
			if v, ok := it.Meta[key]; ok {
				if s, ok := v.(string); ok {
					cate = s
				}
			}
		}

		if cate == "" {
			out = append(out, it)
			continue
		}
		if seen[cate] {
			continue
		}
		seen[cate] = true
		out = append(out, it)
	}

	return out, nil
}
