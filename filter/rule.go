package filter

import (
	"context"

	"github.com/rushteam/habitkit/core"
	"github.com/rushteam/habitkit/pkg/dsl"
)

// RuleFilter 是规则过滤器：表达式命中的候选被过滤掉。
// 规则以 CEL 表达式下发，运营侧可以不改代码就调整过滤策略。
//
// 示例：
//   - `item.features.difficulty > 0.75` → 过滤高难度习惯
//   - `item.meta.minutes > 60` → 过滤超长习惯
//   - `rctx.params.scene == "onboarding" && item.meta.difficulty > 2` → 新手场景只留简单习惯
type RuleFilter struct {
	// Rule CEL 表达式；为空时不过滤任何候选
	Rule string
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Rule == "" || item == nil || rctx == nil {
		return false, nil
	}
	return dsl.NewEval(item, rctx).Evaluate(f.Rule)
}
