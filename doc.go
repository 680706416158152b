// Package habitkit 是一个习惯推荐工具包（Habit Recommender Kit）。
//
// 设计要点：
//   - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank → PostProcess）
//   - Labels-first: labels 全链路透传与标准化 merge，驱动解释、降级与观测
//   - Artifact-first: 训练产出不可变的版本化工件（编码参数 + 协同模型 + 成功率模型），
//     一次请求始终钉在一个工件版本上
package habitkit

import "github.com/rushteam/habitkit/pipeline"

// 轻量 facade：便于用户直接 import "habitkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
