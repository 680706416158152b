package core

// FactorType 是解释因子的封闭枚举。
// 因子抽取是一张固定规则表（见 explain 包），新增因子时同步扩展此枚举。
type FactorType string

const (
	FactorCategoryMatch   FactorType = "category_match"
	FactorPreferenceMatch FactorType = "preference_match"
	FactorAgeFit          FactorType = "age_fit"
	FactorTimeFit         FactorType = "time_fit"
	FactorSuccessProb     FactorType = "success_probability"
)

// FactorScore 是单条解释因子：类型、重要度、模板参数。
// 仅在一次请求内存在，Explanation Generator 消费后即丢弃，不持久化。
type FactorScore struct {
	Type       FactorType        `json:"type"`
	Importance float64           `json:"importance"` // [0,1]
	Args       map[string]string `json:"args,omitempty"`
}

// Recommendation 是单条推荐结果：习惯、综合得分、Top 因子与渲染后的解释文本。
// 由核心层逐请求产出并返回给调用方；是否持久化由调用方决定。
type Recommendation struct {
	HabitID     string        `json:"habit_id"`
	Score       float64       `json:"score"`
	Factors     []FactorScore `json:"factors"`
	Explanation string        `json:"explanation"`

	// Flags 透出降级/冷启动等元信息（degraded、uncalibrated、collaborative_disabled）
	Flags []string `json:"flags,omitempty"`
}
