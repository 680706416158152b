package explain

import (
	"sort"
	"strconv"

	"github.com/rushteam/habitkit/core"
)

// rule 是因子抽取规则：独立的谓词 + 固定重要度 + 模板参数。
// 规则表按声明顺序求值，互不依赖；新因子加一行规则即可，不改控制流。
type rule struct {
	factor     core.FactorType
	importance float64
	match      func(rctx *core.RecommendContext, it *core.Item) (map[string]string, bool)
}

var factorRules = []rule{
	{
		factor:     core.FactorCategoryMatch,
		importance: 0.9,
		match: func(rctx *core.RecommendContext, it *core.Item) (map[string]string, bool) {
			cat, _ := it.Meta["category"].(string)
			if cat == "" || rctx.User == nil || !rctx.User.ImprovementAreas[cat] {
				return nil, false
			}
			return map[string]string{"category": cat}, true
		},
	},
	{
		factor:     core.FactorPreferenceMatch,
		importance: 0.8,
		match: func(rctx *core.RecommendContext, it *core.Item) (map[string]string, bool) {
			act, _ := it.Meta["activity_type"].(string)
			if act == "" || rctx.User == nil || !rctx.User.ActivityPreferences[act] {
				return nil, false
			}
			return map[string]string{"activity": act}, true
		},
	},
	{
		factor:     core.FactorSuccessProb,
		importance: 0.7,
		match: func(_ *core.RecommendContext, it *core.Item) (map[string]string, bool) {
			lbl, ok := it.GetLabel("signal_success")
			if !ok {
				return nil, false
			}
			// 未校准的概率不拿来向用户解释
			if _, uncal := it.GetLabel("uncalibrated"); uncal {
				return nil, false
			}
			if _, degraded := it.GetLabel("degraded"); degraded {
				return nil, false
			}
			p, err := strconv.ParseFloat(lbl.Value, 64)
			if err != nil || p < 0.6 {
				return nil, false
			}
			// 面向用户只给定性档位，不给原始概率数字；档位名由渲染层按语言翻译
			level := "moderate"
			if p >= 0.75 {
				level = "high"
			}
			return map[string]string{"level": level}, true
		},
	},
	{
		factor:     core.FactorAgeFit,
		importance: 0.5,
		match: func(rctx *core.RecommendContext, it *core.Item) (map[string]string, bool) {
			lbl, ok := it.GetLabel("age_fit")
			if !ok {
				return nil, false
			}
			m, err := strconv.ParseFloat(lbl.Value, 64)
			if err != nil || m < 1 {
				return nil, false
			}
			return nil, true
		},
	},
	{
		factor:     core.FactorTimeFit,
		importance: 0.4,
		match: func(rctx *core.RecommendContext, it *core.Item) (map[string]string, bool) {
			now := currentTimeOfDay(rctx)
			if now == core.TimeAny {
				return nil, false
			}
			pref, _ := it.Meta["preferred_time"].(string)
			if pref != string(now) {
				return nil, false
			}
			minutes, _ := it.Meta["minutes"].(int)
			if minutes <= 0 {
				return nil, false
			}
			return map[string]string{
				"time_of_day": pref,
				"minutes":     strconv.Itoa(minutes),
			}, true
		},
	},
}

// currentTimeOfDay 解析当前时段：优先请求参数 time_of_day，缺省回退用户历史偏好时段。
// 与重排层的上下文调权用同一解析次序，解释与打分看到的时段才一致。
func currentTimeOfDay(rctx *core.RecommendContext) core.TimeOfDay {
	if rctx.Params != nil {
		if s, ok := rctx.Params["time_of_day"].(string); ok && s != "" {
			return core.TimeOfDay(s)
		}
	}
	if rctx.User == nil {
		return core.TimeAny
	}
	return rctx.User.PreferredTimeOfDay()
}

// ExtractFactors 对单个候选求值因子规则表，按重要度降序返回命中的因子。
// 因子只在一次请求内存在，渲染成解释文本后即丢弃。
func ExtractFactors(rctx *core.RecommendContext, it *core.Item) []core.FactorScore {
	if rctx == nil || it == nil {
		return nil
	}
	var out []core.FactorScore
	for _, r := range factorRules {
		args, ok := r.match(rctx, it)
		if !ok {
			continue
		}
		out = append(out, core.FactorScore{
			Type:       r.factor,
			Importance: r.importance,
			Args:       args,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	return out
}
