package filter

import (
	"context"

	"github.com/rushteam/habitkit/core"
)

// PrerequisiteFilter 过滤掉前置习惯尚未养成的候选。
// 前置列表来自召回阶段写入的 meta["prerequisites"]；
// 用户的进行中习惯集合来自画像的完成历史摘要。
//
// 无前置的习惯永远保留；无画像 / 无历史的用户视为没有任何前置满足。
type PrerequisiteFilter struct{}

func (f *PrerequisiteFilter) Name() string {
	return "filter.prerequisite"
}

func (f *PrerequisiteFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || item.Meta == nil {
		return false, nil
	}
	prereqs, ok := item.Meta["prerequisites"].([]string)
	if !ok || len(prereqs) == 0 {
		return false, nil
	}

	var user *core.UserProfile
	if rctx != nil {
		user = rctx.User
	}
	for _, id := range prereqs {
		if user == nil || !user.HasActiveHabit(id) {
			return true, nil
		}
	}
	return false, nil
}
