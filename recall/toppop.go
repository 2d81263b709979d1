package recall

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/pipeline"
	"github.com/rushteam/divkit/pkg/conv"
	"github.com/rushteam/divkit/pkg/utils"
	"github.com/rushteam/divkit/pkg/vocab"
	"github.com/rushteam/divkit/sparse"
)

// TopPop 是按聚合流行度预计算的全局排行，用作冷启动兜底：
// 训练期未见过的用户统一拿到同一份排行，与其它请求状态无关。
//
// 构建一次后不可变，只读共享是安全的。
type TopPop struct {
	items  *vocab.Vocab
	rank   []int // 物品内部索引，流行度降序，平手按索引升序（稳定）
	scores []float64
}

// NewTopPopFromMatrix 从交互矩阵的列流行度（每列权重之和）构建排行。
// 矩阵列数必须与物品词表一致。
func NewTopPopFromMatrix(train *sparse.Matrix, items *vocab.Vocab) (*TopPop, error) {
	if train == nil || items == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput,
			"recall: nil matrix or vocab")
	}
	if train.Cols() != items.Len() {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("recall: matrix has %d columns, item vocab has %d tokens", train.Cols(), items.Len()))
	}

	popularity := train.ColSums()
	rank := make([]int, len(popularity))
	for i := range rank {
		rank[i] = i
	}
	sort.SliceStable(rank, func(a, b int) bool { return popularity[rank[a]] > popularity[rank[b]] })

	scores := make([]float64, len(rank))
	for i, idx := range rank {
		scores[i] = popularity[idx]
	}
	return &TopPop{items: items, rank: rank, scores: scores}, nil
}

// Len 返回排行长度（物品总数）。
func (tp *TopPop) Len() int { return len(tp.rank) }

// Top 返回排行前 k 的 (token, score)；k 超出长度时返回全部。
func (tp *TopPop) Top(k int) ([]string, []float64) {
	if k < 0 {
		k = 0
	}
	if k > len(tp.rank) {
		k = len(tp.rank)
	}
	tokens := make([]string, k)
	scores := make([]float64, k)
	for i := 0; i < k; i++ {
		tokens[i], _ = tp.items.Token(tp.rank[i])
		scores[i] = tp.scores[i]
	}
	return tokens, scores
}

// TopWithin 返回排行在候选子集 keep 内的前 k 个 (token, score)，
// 保持全局排行顺序。keep 越界返回 DIMENSION_MISMATCH。
func (tp *TopPop) TopWithin(keep []int, k int) ([]string, []float64, error) {
	allowed := make(map[int]bool, len(keep))
	for _, idx := range keep {
		if idx < 0 || idx >= len(tp.rank) {
			return nil, nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeDimensionMismatch,
				fmt.Sprintf("recall: keep index %d out of range [0, %d)", idx, len(tp.rank)))
		}
		allowed[idx] = true
	}
	tokens := make([]string, 0, k)
	scores := make([]float64, 0, k)
	for i, idx := range tp.rank {
		if len(tokens) >= k {
			break
		}
		if !allowed[idx] {
			continue
		}
		tok, _ := tp.items.Token(idx)
		tokens = append(tokens, tok)
		scores = append(scores, tp.scores[i])
	}
	return tokens, scores, nil
}

// Save 把排行持久化为 Store 中的有序集合（member = token，score = 流行度），
// 供多实例共享同一份兜底排行。
func (tp *TopPop) Save(ctx context.Context, kv core.KeyValueStore, key string) error {
	for i, idx := range tp.rank {
		tok, _ := tp.items.Token(idx)
		if err := kv.ZAdd(ctx, key, tp.scores[i], tok); err != nil {
			return err
		}
	}
	return nil
}

// LoadTopPop 从 Store 的有序集合恢复排行（降序）。
// 词表外的 member 会被跳过。
func LoadTopPop(ctx context.Context, kv core.KeyValueStore, key string, items *vocab.Vocab) (*TopPop, error) {
	members, err := kv.ZRange(ctx, key, 0, -1)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeNotFound,
			"recall: toppop ranking not found in store")
	}
	tp := &TopPop{items: items}
	for _, m := range members {
		idx, ok := items.Index(m)
		if !ok {
			continue
		}
		score, err := kv.ZScore(ctx, key, m)
		if err != nil {
			return nil, err
		}
		tp.rank = append(tp.rank, idx)
		tp.scores = append(tp.scores, score)
	}
	return tp, nil
}

// TopPopSource 把 TopPop 包装为 Pipeline 召回源 / Node。
// TopK 为默认返回数量，可被请求参数 top_k 覆盖。
type TopPopSource struct {
	TopPop *TopPop
	TopK   int
}

func (s *TopPopSource) Name() string        { return "recall.toppop" }
func (s *TopPopSource) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (s *TopPopSource) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return s.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (s *TopPopSource) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if s.TopPop == nil {
		return nil, nil
	}
	topK := s.TopK
	if topK <= 0 {
		topK = 100
	}
	if rctx != nil {
		if k, ok := conv.ToInt(rctx.Params["top_k"]); ok && k > 0 {
			topK = k
		}
	}
	tokens, scores := s.TopPop.Top(topK)
	out := make([]*core.Item, 0, len(tokens))
	for i, tok := range tokens {
		it := core.NewItem(tok)
		it.Score = scores[i]
		it.PutLabel("recall_source", utils.Label{Value: "toppop", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
