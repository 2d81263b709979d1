// Package builders 在 init 中注册所有可纯配置构建的内置 Node。
// 在 main 或入口处 import _ "github.com/rushteam/divkit/config/builders" 触发注册。
package builders

import (
	"fmt"

	"github.com/rushteam/divkit/config"
	"github.com/rushteam/divkit/filter"
	"github.com/rushteam/divkit/pipeline"
	"github.com/rushteam/divkit/pkg/conv"
	"github.com/rushteam/divkit/rerank"
)

func init() {
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.category_dedup", BuildCategoryDedupNode)
	config.Register("filter", BuildFilterNode)
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	n := int(conv.ConfigGetInt64(cfg, "n", 0))
	return &rerank.TopNNode{N: n}, nil
}

func BuildCategoryDedupNode(cfg map[string]interface{}) (pipeline.Node, error) {
	labelKey := conv.ConfigGet(cfg, "label_key", "category")
	if labelKey == "" {
		labelKey = "category"
	}
	return &rerank.CategoryDedup{LabelKey: labelKey}, nil
}

func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["item_ids"])
			if ids == nil {
				ids = []string{}
			}
			key := conv.ConfigGet(filterMap, "key", "")
			filters = append(filters, filter.NewBlacklistFilter(ids, nil, key))

		case "label":
			expr := conv.ConfigGet(filterMap, "expr", "")
			filters = append(filters, &filter.LabelFilter{Expr: expr})

		case "interacted":
			// 需要训练矩阵与词表，纯配置无法构建；
			// 应用侧用闭包捕获后 config.Register 自定义类型。
			return nil, fmt.Errorf("interacted filter requires runtime wiring, register it from the application")

		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters}, nil
}
