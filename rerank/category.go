package rerank

import (
	"context"
	"sync"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/metadata"
	"github.com/rushteam/divkit/pipeline"
	"github.com/rushteam/divkit/pkg/utils"
	"github.com/rushteam/divkit/pkg/vocab"
)

// CategoryLabelNode 从元数据目录给物品打上 "category" 标签，
// 供下游 CategoryDedup / 标签过滤使用。
//
// 目录按物品索引寻址，物品 ID 是 token，所以需要物品词表做映射。
// 全量类别列表在首次 Process 时拉取并缓存。
type CategoryLabelNode struct {
	Catalog metadata.Catalog
	Items   *vocab.Vocab

	once       sync.Once
	categories []string
	loadErr    error
}

func (n *CategoryLabelNode) Name() string {
	return "rerank.category_label"
}

func (n *CategoryLabelNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *CategoryLabelNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	n.once.Do(func() {
		n.categories, n.loadErr = n.Catalog.Categories(ctx)
	})
	if n.loadErr != nil {
		return nil, n.loadErr
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		idx, ok := n.Items.Index(it.ID)
		if !ok || idx >= len(n.categories) {
			continue
		}
		it.PutLabel("category", utils.Label{Value: n.categories[idx], Source: "metadata"})
	}
	return items, nil
}

var _ pipeline.Node = (*CategoryLabelNode)(nil)
