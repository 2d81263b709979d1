package recall

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/eval"
	"github.com/rushteam/divkit/model"
	"github.com/rushteam/divkit/pipeline"
	"github.com/rushteam/divkit/pkg/conv"
	"github.com/rushteam/divkit/pkg/utils"
	"github.com/rushteam/divkit/pkg/vocab"
	"github.com/rushteam/divkit/sparse"
)

// DefaultTopK 是单用户推荐的默认截断。
const DefaultTopK = 100

// Engine 是隐因子检索引擎：包装外部训练好的因子模型，
// 提供批量/单用户推荐、冷启动兜底（toppop）、受限候选打分与物品掩码。
//
// 状态：模型引用、（BM25 加权后的）训练矩阵、预计算的 toppop 排行、
// 用户/物品 token 与内部索引的双向映射。
// toppop 在构建时计算一次，此后只读。
type Engine struct {
	model  model.FactorModel
	train  *sparse.Matrix
	users  *vocab.Vocab
	items  *vocab.Vocab
	toppop *TopPop

	// TopK 是 Pipeline 召回时的默认返回数量
	TopK int
}

// NewEngine 构建检索引擎并预计算 toppop 兜底排行。
// 训练矩阵形状必须与词表、因子矩阵一致，不一致返回 DIMENSION_MISMATCH。
func NewEngine(m model.FactorModel, train *sparse.Matrix, users, items *vocab.Vocab) (*Engine, error) {
	if m == nil || train == nil || users == nil || items == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput,
			"recall: nil model, matrix or vocab")
	}
	if train.Rows() != users.Len() {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("recall: matrix has %d rows, user vocab has %d tokens", train.Rows(), users.Len()))
	}
	if train.Cols() != items.Len() {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("recall: matrix has %d columns, item vocab has %d tokens", train.Cols(), items.Len()))
	}
	uf, _ := m.UserFactors().Dims()
	itf, _ := m.ItemFactors().Dims()
	if uf != train.Rows() || itf != train.Cols() {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("recall: factors (%d users, %d items) disagree with matrix (%d, %d)",
				uf, itf, train.Rows(), train.Cols()))
	}

	toppop, err := NewTopPopFromMatrix(train, items)
	if err != nil {
		return nil, err
	}
	return &Engine{
		model:  m,
		train:  train,
		users:  users,
		items:  items,
		toppop: toppop,
		TopK:   DefaultTopK,
	}, nil
}

// TopPop 返回缓存的兜底排行（只读共享）。
func (e *Engine) TopPop() *TopPop { return e.toppop }

// Recommend 批量推荐：对每个用户返回按分数降序的物品内部索引与分数，
// 通过训练矩阵对应行排除已交互物品。
func (e *Engine) Recommend(ctx context.Context, userIDs []int) ([][]int, [][]float64, error) {
	return e.model.Recommend(ctx, userIDs, e.train, e.items.Len())
}

// RecommendSingle 单用户推荐：已知用户走模型查询并换回 token；
// 未知用户直接返回 toppop 排行的前 topK —— 不触发模型查询。
// 这是冷启动策略：新用户总是拿到同一份全局兜底排行。
// topK <= 0 时取 DefaultTopK。
func (e *Engine) RecommendSingle(ctx context.Context, userToken string, topK int) ([]string, []float64, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	userID, ok := e.users.Index(userToken)
	if !ok {
		tokens, scores := e.toppop.Top(topK)
		return tokens, scores, nil
	}

	ids, scores, err := e.model.Recommend(ctx, []int{userID}, e.train, topK)
	if err != nil {
		return nil, nil, err
	}
	tokens := make([]string, len(ids[0]))
	for i, id := range ids[0] {
		tokens[i], _ = e.items.Token(id)
	}
	return tokens, scores[0], nil
}

// ScoreSingleUser 计算用户嵌入与候选子集物品嵌入的点积。
// 未知用户返回 (nil, false, nil)：这是“无分数”结果而不是错误。
// keepIndices 越界返回 DIMENSION_MISMATCH。
// 注意：内部索引 0 是合法用户，命中判断只看词表查询结果。
func (e *Engine) ScoreSingleUser(_ context.Context, userToken string, keepIndices []int) ([]float64, bool, error) {
	itemF := e.model.ItemFactors()
	nItems, _ := itemF.Dims()
	for _, idx := range keepIndices {
		if idx < 0 || idx >= nItems {
			return nil, false, core.NewDomainError(core.ModuleRecall, core.ErrorCodeDimensionMismatch,
				fmt.Sprintf("recall: keep index %d out of range [0, %d)", idx, nItems))
		}
	}
	userID, ok := e.users.Index(userToken)
	if !ok {
		return nil, false, nil
	}

	userVec := e.model.UserFactors().RawRowView(userID)
	scores := make([]float64, len(keepIndices))
	for i, idx := range keepIndices {
		scores[i] = floats.Dot(userVec, itemF.RawRowView(idx))
	}
	return scores, true, nil
}

// TopKSingleUser 返回候选子集内的 top-k (token, score)。
// 已知用户：受限分数降序排列，平手按 keepIndices 原始顺序稳定排列；
// 未知用户：toppop 排行限制在 keepIndices 内的前 k 个。
func (e *Engine) TopKSingleUser(ctx context.Context, userToken string, keepIndices []int, topK int) ([]string, []float64, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	scores, known, err := e.ScoreSingleUser(ctx, userToken, keepIndices)
	if err != nil {
		return nil, nil, err
	}
	if !known {
		return e.toppop.TopWithin(keepIndices, topK)
	}

	order := make([]int, len(keepIndices))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	if topK > len(order) {
		topK = len(order)
	}
	tokens := make([]string, topK)
	out := make([]float64, topK)
	for i := 0; i < topK; i++ {
		tokens[i], _ = e.items.Token(keepIndices[order[i]])
		out[i] = scores[order[i]]
	}
	return tokens, out, nil
}

// MaskItems 把 keepRows 之外的物品嵌入行全部置零。
//
// 破坏性操作：就地修改模型的共享因子矩阵，对共享同一模型实例的
// 所有后续调用可见，且除重新加载模型外不可逆。非线程安全——
// 调用方必须把 MaskItems 与同一模型上的并发打分调用串行化。
func (e *Engine) MaskItems(keepRows []int) error {
	itemF := e.model.ItemFactors()
	nItems, dim := itemF.Dims()
	keep := make(map[int]bool, len(keepRows))
	for _, idx := range keepRows {
		if idx < 0 || idx >= nItems {
			return core.NewDomainError(core.ModuleRecall, core.ErrorCodeDimensionMismatch,
				fmt.Sprintf("recall: keep row %d out of range [0, %d)", idx, nItems))
		}
		keep[idx] = true
	}
	for i := 0; i < nItems; i++ {
		if keep[i] {
			continue
		}
		for j := 0; j < dim; j++ {
			itemF.Set(i, j, 0)
		}
	}
	return nil
}

// Predict 对显式 (user, item) 索引对做逐元素点积打分（离线评估用）。
// 两个索引序列必须等长且都在范围内。
func (e *Engine) Predict(userIDs, itemIDs []int) ([]float64, error) {
	if len(userIDs) != len(itemIDs) {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("recall: %d user ids vs %d item ids", len(userIDs), len(itemIDs)))
	}
	userF := e.model.UserFactors()
	itemF := e.model.ItemFactors()
	nUsers, _ := userF.Dims()
	nItems, _ := itemF.Dims()

	out := make([]float64, len(userIDs))
	for i := range userIDs {
		if userIDs[i] < 0 || userIDs[i] >= nUsers || itemIDs[i] < 0 || itemIDs[i] >= nItems {
			return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeDimensionMismatch,
				fmt.Sprintf("recall: pair (%d, %d) out of range", userIDs[i], itemIDs[i]))
		}
		out[i] = floats.Dot(userF.RawRowView(userIDs[i]), itemF.RawRowView(itemIDs[i]))
	}
	return out, nil
}

// AUCScore 在 (train, test) 上计算截断 topK 的 AUC，委托给 eval 包。
func (e *Engine) AUCScore(ctx context.Context, test *sparse.Matrix, topK int) (float64, error) {
	return eval.AUCAtK(ctx, e.model, e.train, test, topK)
}

// PrecisionAtTopK 在 (train, test) 上计算 precision@topK，委托给 eval 包。
func (e *Engine) PrecisionAtTopK(ctx context.Context, test *sparse.Matrix, topK int) (float64, error) {
	return eval.PrecisionAtK(ctx, e.model, e.train, test, topK)
}

// --- Pipeline 集成 ---

func (e *Engine) Name() string        { return "recall.factorization" }
func (e *Engine) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (e *Engine) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return e.Recall(ctx, rctx)
}

// Recall 实现 Source 接口：按 rctx.UserID 做单用户推荐，
// 冷启动命中 toppop 时打上 cold_start 标签，方便 explain / 观测。
func (e *Engine) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	topK := e.TopK
	if k, ok := conv.ToInt(rctx.Params["top_k"]); ok && k > 0 {
		topK = k
	}

	_, known := e.users.Index(rctx.UserID)
	tokens, scores, err := e.RecommendSingle(ctx, rctx.UserID, topK)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(tokens))
	for i, tok := range tokens {
		it := core.NewItem(tok)
		it.Score = scores[i]
		it.PutLabel("recall_source", utils.Label{Value: "factorization", Source: "recall"})
		if !known {
			it.PutLabel("cold_start", utils.Label{Value: "true", Source: "recall"})
		}
		out = append(out, it)
	}
	return out, nil
}

var _ Source = (*Engine)(nil)
var _ pipeline.Node = (*Engine)(nil)
