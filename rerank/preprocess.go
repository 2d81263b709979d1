package rerank

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/divkit/core"
	"github.com/rushteam/divkit/metadata"
	"github.com/rushteam/divkit/recall"
)

// Input 是多样性重排器的标准输入：
// 候选物品、全量类别列表、相关性分数和候选间相似度矩阵。
type Input struct {
	// Candidates 候选物品的内部索引（相关性降序）
	Candidates []int

	// Categories 全量目录的类别标签（按物品索引顺序），
	// 重排器用它评估结果对目录类别的覆盖度。
	Categories []string

	// Relevance 候选物品的相关性分数，与 Candidates 对齐
	Relevance []float64

	// Similarity 候选间相似度矩阵（嵌入内积，严格对称），
	// 对角线为各候选嵌入与自身的内积。
	Similarity *mat.SymDense
}

// Preprocessor 把召回引擎输出转换成重排器输入：
// 取引擎候选 -> 截断 -> 从元数据目录取类别与嵌入 -> 计算相似度矩阵。
type Preprocessor struct {
	Engine  *recall.Engine
	Catalog metadata.Catalog
}

func NewPreprocessor(engine *recall.Engine, catalog metadata.Catalog) (*Preprocessor, error) {
	if engine == nil || catalog == nil {
		return nil, core.NewDomainError(core.ModuleReRank, core.ErrorCodeInvalidInput,
			"rerank: nil engine or catalog")
	}
	return &Preprocessor{Engine: engine, Catalog: catalog}, nil
}

// Preprocess 为单个已知用户（内部索引）构建重排输入。
//
// truncateAt 是保留的候选数量：小于 1 或超过引擎返回的候选数
// 返回 DIMENSION_MISMATCH。候选嵌入维度不一致返回 INVALID_INPUT。
func (p *Preprocessor) Preprocess(ctx context.Context, userIndex, truncateAt int) (*Input, error) {
	if truncateAt < 1 {
		return nil, core.NewDomainError(core.ModuleReRank, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("rerank: truncateAt %d, want >= 1", truncateAt))
	}

	ids, scores, err := p.Engine.Recommend(ctx, []int{userIndex})
	if err != nil {
		return nil, err
	}
	if truncateAt > len(ids[0]) {
		return nil, core.NewDomainError(core.ModuleReRank, core.ErrorCodeDimensionMismatch,
			fmt.Sprintf("rerank: truncateAt %d exceeds %d candidates", truncateAt, len(ids[0])))
	}
	candidates := ids[0][:truncateAt]
	relevance := scores[0][:truncateAt]

	categories, err := p.Catalog.Categories(ctx)
	if err != nil {
		return nil, err
	}

	embeddings, err := p.Catalog.Embeddings(ctx, candidates)
	if err != nil {
		return nil, err
	}
	dim := len(embeddings[0])
	for i, e := range embeddings {
		if len(e) != dim {
			return nil, core.NewDomainError(core.ModuleReRank, core.ErrorCodeInvalidInput,
				fmt.Sprintf("rerank: embedding for candidate %d has length %d, want %d",
					candidates[i], len(e), dim))
		}
	}

	sim := mat.NewSymDense(truncateAt, nil)
	for i := 0; i < truncateAt; i++ {
		for j := i; j < truncateAt; j++ {
			sim.SetSym(i, j, floats.Dot(embeddings[i], embeddings[j]))
		}
	}

	return &Input{
		Candidates: candidates,
		Categories: categories,
		Relevance:  relevance,
		Similarity: sim,
	}, nil
}
