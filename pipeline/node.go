package pipeline

import (
	"context"

	"github.com/rushteam/habitkit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall      Kind = "recall"      // 候选阶段：从目录快照产生候选习惯
	KindFeature     Kind = "feature"     // 特征阶段：注入外部特征服务的扩展特征
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不符合硬约束的候选（如前置习惯未满足）
	KindRank        Kind = "rank"        // 排序阶段：三路信号融合打分并排序
	KindReRank      Kind = "rerank"      // 重排阶段：多样性约束 / 上下文调权 / 截断
	KindPostProcess Kind = "postprocess" // 后处理阶段：因子抽取与解释渲染
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，方便候选生成、过滤截断、重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// NodeBuilder 根据配置构建 Node，供配置驱动的工厂使用。
type NodeBuilder = func(map[string]interface{}) (Node, error)
