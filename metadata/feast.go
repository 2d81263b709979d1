package metadata

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/pkg/vocab"
)

// onlineClient 是 Feast 在线特征客户端的最小接口（便于测试替换）。
type onlineClient interface {
	GetOnlineFeatures(ctx context.Context, req *feastsdk.OnlineFeaturesRequest) (*feastsdk.OnlineFeaturesResponse, error)
}

// FeastCatalog 是基于 Feast 在线特征库的元数据目录。
//
// 物品以 token（物品词表）作为实体键查询特征：
//   - CategoryFeature：string 类型特征
//   - EmbeddingFeature：double list / float list 类型特征
type FeastCatalog struct {
	client onlineClient

	// Project Feast 项目名称
	Project string

	// EntityKey 实体键名称，例如 "item_id"
	EntityKey string

	// CategoryFeature 类别特征名称，例如 "item:category"
	CategoryFeature string

	// EmbeddingFeature 嵌入特征名称，例如 "item:embedding"
	EmbeddingFeature string

	items *vocab.Vocab
}

// NewFeastCatalog 创建 Feast 支撑的元数据目录。
//
// host/port 为 Feast Feature Server 的 gRPC 端点（port 为 0 时用 6565）。
func NewFeastCatalog(host string, port int, project string, entityKey, categoryFeature, embeddingFeature string, items *vocab.Vocab) (*FeastCatalog, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feast grpc client: %w", err)
	}
	return &FeastCatalog{
		client:           client,
		Project:          project,
		EntityKey:        entityKey,
		CategoryFeature:  categoryFeature,
		EmbeddingFeature: embeddingFeature,
		items:            items,
	}, nil
}

func (c *FeastCatalog) Name() string { return "feast:" + c.Project }

func (c *FeastCatalog) Len() int { return c.items.Len() }

// fetch 按物品索引批量拉取单个特征的在线值。
func (c *FeastCatalog) fetch(ctx context.Context, feature string, itemIndices []int) ([]feastsdk.Row, error) {
	entities := make([]feastsdk.Row, len(itemIndices))
	for i, idx := range itemIndices {
		token, ok := c.items.Token(idx)
		if !ok {
			return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeDimensionMismatch,
				fmt.Sprintf("metadata: item index %d out of range [0, %d)", idx, c.items.Len()))
		}
		entities[i] = feastsdk.Row{c.EntityKey: feastsdk.StrVal(token)}
	}

	resp, err := c.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: []string{feature},
		Entities: entities,
		Project:  c.Project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast get online features: %w", err)
	}

	rows := resp.Rows()
	if len(rows) != len(itemIndices) {
		return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("metadata: feast returned %d rows, want %d", len(rows), len(itemIndices)))
	}
	return rows, nil
}

func (c *FeastCatalog) Categories(ctx context.Context) ([]string, error) {
	indices := make([]int, c.items.Len())
	for i := range indices {
		indices[i] = i
	}
	rows, err := c.fetch(ctx, c.CategoryFeature, indices)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(rows))
	for i, row := range rows {
		val, ok := row[c.CategoryFeature]
		if !ok || val == nil {
			return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeNotFound,
				fmt.Sprintf("metadata: feast missing category for item %d", i))
		}
		out[i] = val.GetStringVal()
	}
	return out, nil
}

func (c *FeastCatalog) Embeddings(ctx context.Context, itemIndices []int) ([][]float64, error) {
	rows, err := c.fetch(ctx, c.EmbeddingFeature, itemIndices)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(rows))
	for i, row := range rows {
		val, ok := row[c.EmbeddingFeature]
		if !ok || val == nil {
			return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeNotFound,
				fmt.Sprintf("metadata: feast missing embedding for item %d", itemIndices[i]))
		}
		switch {
		case val.GetDoubleListVal() != nil:
			src := val.GetDoubleListVal().GetVal()
			vec := make([]float64, len(src))
			copy(vec, src)
			out[i] = vec
		case val.GetFloatListVal() != nil:
			src := val.GetFloatListVal().GetVal()
			vec := make([]float64, len(src))
			for j, f := range src {
				vec[j] = float64(f)
			}
			out[i] = vec
		default:
			return nil, core.NewDomainError(core.ModuleMetadata, core.ErrorCodeInvalidInput,
				fmt.Sprintf("metadata: feast embedding for item %d is not a numeric list", itemIndices[i]))
		}
	}
	return out, nil
}

var _ Catalog = (*FeastCatalog)(nil)
