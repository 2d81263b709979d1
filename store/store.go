package store

// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.Store 和 core.KeyValueStore 接口。
//
// divkit 中的用途：
//   - toppop 热门排行持久化（ZAdd/ZRange/ZScore）
//   - 物品元数据目录（HGet/HSet/HGetAll，见 metadata.StoreCatalog）
//
// 示例：
//   var kv core.KeyValueStore = NewMemoryStore()
