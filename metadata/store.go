package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rushteam/divkit/core"
)

// itemRecord 是 Store 哈希表中单个物品的存储格式（JSON）。
type itemRecord struct {
	Category  string    `json:"category"`
	Embedding []float64 `json:"embedding"`
}

// StoreCatalog 是基于 core.KeyValueStore 的元数据目录：
// 哈希 key 为 Key，field 为物品索引（十进制字符串），value 为 JSON 记录。
// 生产环境配合 store.RedisStore 多实例共享目录。
type StoreCatalog struct {
	kv core.KeyValueStore

	// Key 是哈希表的 key，例如 "items:meta"
	Key string

	// Count 是目录中物品总数（与交互矩阵列数一致）
	Count int
}

// NewStoreCatalog 创建 Store 支撑的元数据目录。
func NewStoreCatalog(kv core.KeyValueStore, key string, count int) *StoreCatalog {
	if key == "" {
		key = "items:meta"
	}
	return &StoreCatalog{kv: kv, Key: key, Count: count}
}

// SaveItem 写入单个物品的元数据记录。
func (c *StoreCatalog) SaveItem(ctx context.Context, itemIndex int, category string, embedding []float64) error {
	data, err := json.Marshal(itemRecord{Category: category, Embedding: embedding})
	if err != nil {
		return err
	}
	return c.kv.HSet(ctx, c.Key, strconv.Itoa(itemIndex), data)
}

func (c *StoreCatalog) Name() string { return "store:" + c.kv.Name() }

func (c *StoreCatalog) Len() int { return c.Count }

func (c *StoreCatalog) Categories(ctx context.Context) ([]string, error) {
	fields, err := c.kv.HGetAll(ctx, c.Key)
	if err != nil {
		return nil, err
	}
	out := make([]string, c.Count)
	for i := 0; i < c.Count; i++ {
		data, ok := fields[strconv.Itoa(i)]
		if !ok {
			return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeNotFound,
				fmt.Sprintf("metadata: item %d missing in store", i))
		}
		var rec itemRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}
		out[i] = rec.Category
	}
	return out, nil
}

func (c *StoreCatalog) Embeddings(ctx context.Context, itemIndices []int) ([][]float64, error) {
	out := make([][]float64, len(itemIndices))
	for i, idx := range itemIndices {
		if idx < 0 || idx >= c.Count {
			return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeDimensionMismatch,
				fmt.Sprintf("metadata: item index %d out of range [0, %d)", idx, c.Count))
		}
		data, err := c.kv.HGet(ctx, c.Key, strconv.Itoa(idx))
		if err != nil {
			return nil, err
		}
		var rec itemRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}
		out[i] = rec.Embedding
	}
	return out, nil
}

var _ Catalog = (*StoreCatalog)(nil)
