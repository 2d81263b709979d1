package rerank

import (
	"context"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在召回/过滤后截取前 N 个物品。
//
// 使用场景：
//   - 召回后只保留 Top 10/20/50 个结果
//   - 控制进入多样性重排的候选数量
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        engine,                          // 召回
//	        &rerank.TopNNode{N: 20},         // 截取 Top 20
//	        &rerank.CategoryDedup{},         // 类别去重
//	    },
//	}
type TopNNode struct {
	// N 要保留的物品数量（Top N）
	// 如果 N <= 0，则返回所有物品（不截断）
	// 如果 N > len(items)，则返回所有物品
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 {
		return items, nil
	}
	if len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
