package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/habitkit/core"
	"github.com/rushteam/habitkit/pipeline"
	"github.com/rushteam/habitkit/pkg/utils"
)

// ContextPenalty 是上下文调权 Node：对不适合当前上下文的候选降权（不移除）。
//
// 两类降权：
//   - 用户已在进行中的习惯（重复推荐价值低）
//   - 习惯期望时段与用户历史完成时段不一致
//
// 当前时段优先取请求参数 params["time_of_day"]，缺省时用历史完成直方图推断。
type ContextPenalty struct {
	// ActivePenalty 进行中习惯的降权系数，默认 0.5
	ActivePenalty float64

	// TimeMismatchPenalty 时段不一致的降权系数，默认 0.8
	TimeMismatchPenalty float64
}

func (n *ContextPenalty) Name() string {
	return "rerank.context_penalty"
}

func (n *ContextPenalty) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *ContextPenalty) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || rctx == nil || rctx.User == nil {
		return items, nil
	}

	activePenalty := n.ActivePenalty
	if activePenalty <= 0 || activePenalty > 1 {
		activePenalty = 0.5
	}
	timePenalty := n.TimeMismatchPenalty
	if timePenalty <= 0 || timePenalty > 1 {
		timePenalty = 0.8
	}

	now := n.currentTimeOfDay(rctx)

	changed := false
	for _, it := range items {
		if it == nil {
			continue
		}
		if rctx.User.HasActiveHabit(it.ID) {
			it.Score *= activePenalty
			it.PutLabel("active_habit", utils.Label{Value: "true", Source: n.Name()})
			changed = true
		}
		if now != core.TimeAny {
			if pref := preferredTimeOf(it); pref != "" && pref != core.TimeAny && pref != now {
				it.Score *= timePenalty
				it.PutLabel("time_mismatch", utils.Label{Value: string(pref), Source: n.Name()})
				changed = true
			}
		}
	}

	if changed {
		sort.SliceStable(items, func(i, j int) bool {
			if items[i] == nil {
				return false
			}
			if items[j] == nil {
				return true
			}
			if items[i].Score != items[j].Score {
				return items[i].Score > items[j].Score
			}
			return items[i].ID < items[j].ID
		})
	}
	return items, nil
}

func (n *ContextPenalty) currentTimeOfDay(rctx *core.RecommendContext) core.TimeOfDay {
	if rctx.Params != nil {
		if s, ok := rctx.Params["time_of_day"].(string); ok && s != "" {
			return core.TimeOfDay(s)
		}
	}
	return rctx.User.PreferredTimeOfDay()
}

func preferredTimeOf(it *core.Item) core.TimeOfDay {
	if it.Meta == nil {
		return ""
	}
	s, _ := it.Meta["preferred_time"].(string)
	return core.TimeOfDay(s)
}
