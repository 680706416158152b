package pipeline

import (
	"context"

	"github.com/rushteam/habitkit/core"
)

// Pipeline 是 habitkit 的核心抽象：把推荐逻辑拆成可组合的 Node 链。
// 一次请求在单一逻辑线程上顺序执行 encode → score → fuse → explain，
// 任何 Node 都不允许修改共享模型状态。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
