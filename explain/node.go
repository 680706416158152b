package explain

import (
	"context"

	"github.com/rushteam/habitkit/core"
	"github.com/rushteam/habitkit/pipeline"
)

// Node 是解释生成 Node：对最终候选抽取因子并渲染本地化解释文本。
// 结果写入 meta["factors"] / meta["explanation"]，由出口层组装进最终响应。
//
// 语言从 params["locale"] 读取，缺省回退英文。
type Node struct {
	// MaxFactors 每条解释最多引用的因子数，默认 3
	MaxFactors int
}

func (n *Node) Name() string {
	return "explain.node"
}

func (n *Node) Kind() pipeline.Kind {
	return pipeline.KindPostProcess
}

func (n *Node) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || rctx == nil {
		return items, nil
	}

	locale := DefaultLocale
	if rctx.Params != nil {
		if s, ok := rctx.Params["locale"].(string); ok && s != "" {
			locale = s
		}
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		factors := ExtractFactors(rctx, it)
		if it.Meta == nil {
			it.Meta = make(map[string]any)
		}
		it.Meta["factors"] = factors
		it.Meta["explanation"] = Render(locale, factors, n.MaxFactors)
	}
	return items, nil
}
