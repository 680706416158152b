package rerank

import (
	"context"

	"github.com/rushteam/habitkit/core"
	"github.com/rushteam/habitkit/pipeline"
)

// TopNNode 是 Top-N 截断节点，在重排之后截取前 N 个候选。
// N <= 0 或候选数不足 N 时不截断。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 {
		return items, nil
	}
	if len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
