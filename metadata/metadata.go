// Package metadata 提供物品元数据的领域契约与实现：
// 每个物品至少有一个类别标签（string）和一个定长数值嵌入向量。
// 物品以内部索引寻址（与交互矩阵列对齐）。
package metadata

import "context"

// Catalog 是物品元数据目录的领域接口。
//
// 实现：
//   - Table：内存表（测试/原型）
//   - StoreCatalog：core.KeyValueStore 哈希表支撑（Redis/内存）
//   - FeastCatalog：Feast 在线特征库支撑
type Catalog interface {
	// Name 返回目录后端名称（用于日志/监控）
	Name() string

	// Len 返回目录中的物品总数
	Len() int

	// Categories 返回整个目录的类别标签（按物品索引顺序），
	// 下游多样性重排器需要全量类别列表评估类别覆盖度。
	Categories(ctx context.Context) ([]string, error)

	// Embeddings 批量返回指定物品索引的嵌入向量。
	// 所有向量维度必须一致。
	Embeddings(ctx context.Context, itemIndices []int) ([][]float64, error)
}
