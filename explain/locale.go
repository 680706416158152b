package explain

import (
	"strings"

	"github.com/rushteam/habitkit/core"
)

// DefaultLocale 是模板缺失时的回退语言。
const DefaultLocale = "en"

// templates 是按语言 × 因子类型索引的解释模板表。
// 占位符写作 {name}，渲染时用因子的 Args 替换；
// 因子枚举是封闭的，新增因子时两种语言的模板都要补齐。
var templates = map[string]map[core.FactorType]string{
	"en": {
		core.FactorCategoryMatch:   "it targets your {category} improvement goal",
		core.FactorPreferenceMatch: "it matches your preference for {activity} activities",
		core.FactorAgeFit:          "it suits your age group",
		core.FactorTimeFit:         "its {minutes}-minute routine fits your usual {time_of_day} schedule",
		core.FactorSuccessProb:     "you have a {level} chance of sticking with it",
	},
	"ru": {
		core.FactorCategoryMatch:   "она соответствует вашей цели улучшения в области «{category}»",
		core.FactorPreferenceMatch: "она подходит вашему предпочтению активности «{activity}»",
		core.FactorAgeFit:          "она подходит вашей возрастной группе",
		core.FactorTimeFit:         "её распорядок на {minutes} минут вписывается в ваше обычное время ({time_of_day})",
		core.FactorSuccessProb:     "вероятность, что привычка приживётся, {level}",
	},
}

// probabilityLevels 把成功率定性档位翻译为各语言的说法。
// 因子 Args 里只存档位键（high/moderate），翻译在渲染时发生。
var probabilityLevels = map[string]map[string]string{
	"en": {"high": "high", "moderate": "moderate"},
	"ru": {"high": "высокая", "moderate": "умеренная"},
}

var sentencePrefix = map[string]string{
	"en": "Recommended because ",
	"ru": "Рекомендуется, потому что ",
}

var sentenceJoiner = map[string]string{
	"en": " and ",
	"ru": " и ",
}

// Render 将因子列表渲染为一句解释文本。
// 最多取重要度最高的 maxFactors 个因子；未知语言回退到英文；
// 没有任何命中因子时返回空串，由调用方决定是否展示兜底文案。
func Render(locale string, factors []core.FactorScore, maxFactors int) string {
	if maxFactors <= 0 {
		maxFactors = 3
	}
	byType, ok := templates[locale]
	if !ok {
		locale = DefaultLocale
		byType = templates[locale]
	}

	var parts []string
	for _, f := range factors {
		if len(parts) >= maxFactors {
			break
		}
		tpl, ok := byType[f.Type]
		if !ok {
			// 单个模板缺失时尝试回退语言，仍缺失则跳过该因子
			tpl, ok = templates[DefaultLocale][f.Type]
			if !ok {
				continue
			}
		}
		parts = append(parts, substitute(tpl, localizeArgs(locale, f.Args)))
	}
	if len(parts) == 0 {
		return ""
	}
	return sentencePrefix[locale] + strings.Join(parts, sentenceJoiner[locale]) + "."
}

// localizeArgs 翻译档位类参数。因子本身不允许被修改，翻译走副本。
func localizeArgs(locale string, args map[string]string) map[string]string {
	lv, ok := args["level"]
	if !ok {
		return args
	}
	names, ok := probabilityLevels[locale]
	if !ok {
		names = probabilityLevels[DefaultLocale]
	}
	localized, ok := names[lv]
	if !ok {
		return args
	}
	out := make(map[string]string, len(args))
	for k, v := range args {
		out[k] = v
	}
	out["level"] = localized
	return out
}

func substitute(tpl string, args map[string]string) string {
	for k, v := range args {
		tpl = strings.ReplaceAll(tpl, "{"+k+"}", v)
	}
	return tpl
}
