// Package divkit 是一个多样性感知的检索工具包（Diversity Kit）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → ReRank → PostProcess）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 检索与度量分离: recall 产出候选，diversity 度量结果分布，rerank 提供重排输入
package divkit

import "github.com/rushteam/divkit/pipeline"

// 轻量 facade：便于用户直接 import "divkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
