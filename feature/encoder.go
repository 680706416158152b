package feature

import (
	"context"

	"github.com/rushteam/habitkit/core"
)

// Encoder 是特征编码器：把用户画像 / 习惯定义编码为稀疏特征向量（map 形式）。
//
// 设计要点：
//   - 归一化参数、词表、IDF 表都在训练期拟合一次（FitEncoder），
//     之后整个服务周期内只读复用，保证训练与推理的尺度一致
//   - 用户向量与习惯向量不要求同维，但在参与相似度计算的子块上共轴：
//     cat_*（改善类别/习惯类别）、act_*（活动偏好/活动类型）、txt_*（文本）
//   - 缺失值填补是确定性的：数值缺失 → 参考语料中位数；
//     类别缺失 → 空集哨兵（编码为全零子块）；文本缺失 → 零向量
type Encoder struct {
	Norm           *Normalizer `json:"norm"`
	Activities     *Vocabulary `json:"activities"`
	Categories     *Vocabulary `json:"categories"`
	LearningStyles *Vocabulary `json:"learning_styles"`
	Text           *TFIDF      `json:"text"`

	// Monitor 可选：记录特征使用/缺失情况（内存或 Prometheus 实现）
	Monitor Monitor `json:"-"`
}

// FitEncoder 在参考语料（画像集合 + 目录快照）上拟合全部编码参数。
// 同一份语料得到同一个编码器；目录为空时返回 INSUFFICIENT_DATA。
func FitEncoder(profiles []*core.UserProfile, catalog *core.Catalog) (*Encoder, error) {
	if catalog.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleEncoder, core.ErrorCodeInsufficientData, "encoder: empty catalog")
	}

	numeric := map[string][]float64{}
	var activities, categories, styles []string
	var docs []string

	for _, p := range profiles {
		if p == nil {
			continue
		}
		if p.Age > 0 {
			numeric["age"] = append(numeric["age"], float64(p.Age))
		}
		for a := range p.ActivityPreferences {
			activities = append(activities, a)
		}
		for c := range p.ImprovementAreas {
			categories = append(categories, c)
		}
		if p.LearningStyle != "" {
			styles = append(styles, p.LearningStyle)
		}
		if p.Barriers != "" {
			docs = append(docs, p.Barriers)
		}
		if p.Summary != nil {
			numeric["streak"] = append(numeric["streak"], float64(p.Summary.Streak))
			numeric["interaction_count"] = append(numeric["interaction_count"], float64(p.Summary.InteractionCount))
		}
	}

	for _, h := range catalog.All() {
		numeric["minutes"] = append(numeric["minutes"], float64(h.Minutes))
		categories = append(categories, h.Category)
		activities = append(activities, h.ActivityType)
		if h.Description != "" {
			docs = append(docs, h.Description)
		}
	}

	return &Encoder{
		Norm:           FitNormalizer(numeric),
		Activities:     NewVocabulary(catalog.Version, activities),
		Categories:     NewVocabulary(catalog.Version, categories),
		LearningStyles: NewVocabulary(catalog.Version, styles),
		Text:           FitTFIDF(docs),
	}, nil
}

// EncodeUser 将用户画像编码为特征向量。
// 字段越界（文档化的填补规则覆盖不到的情况）在此边界拒绝，返回指明字段的错误。
func (e *Encoder) EncodeUser(ctx context.Context, p *core.UserProfile) (map[string]float64, error) {
	if p == nil {
		return nil, core.NewDomainError(core.ModuleEncoder, core.ErrorCodeInvalidInput, "encoder: profile is nil")
	}

	// 填补：年龄缺失 → 参考语料中位数；偏好集合缺失 → 空集哨兵
	age := p.Age
	if age == 0 {
		age = int(e.Norm.Median("age"))
		e.recordMissing(ctx, "age", p.UserID)
	}
	prefs := p.ActivityPreferences
	if prefs == nil {
		prefs = map[string]bool{}
		e.recordMissing(ctx, "activity_preferences", p.UserID)
	}
	areas := p.ImprovementAreas
	if areas == nil {
		areas = map[string]bool{}
		e.recordMissing(ctx, "improvement_areas", p.UserID)
	}

	imputed := *p
	imputed.Age = age
	imputed.ActivityPreferences = prefs
	imputed.ImprovementAreas = areas
	if err := imputed.Validate(); err != nil {
		return nil, err
	}

	out := map[string]float64{
		"age": e.Norm.Scale("age", float64(age)),
	}
	if ord := core.CommitmentOrdinal(p.TimeCommitment); ord >= 0 {
		out["time_commitment"] = float64(ord) / 3
	}
	if p.Summary != nil {
		out["completion_rate"] = p.Summary.CompletionRate
		out["streak"] = e.Norm.Scale("streak", float64(p.Summary.Streak))
	}
	merge(out, e.Activities.EncodeSet("act_", prefs))
	merge(out, e.Categories.EncodeSet("cat_", areas))
	merge(out, e.LearningStyles.EncodeOne("style_", p.LearningStyle))
	merge(out, e.Text.Vectorize("txt_", p.Barriers))

	e.recordUsage(ctx, out)
	return out, nil
}

// EncodeHabit 将习惯定义编码为特征向量。
func (e *Encoder) EncodeHabit(ctx context.Context, h *core.Habit) (map[string]float64, error) {
	if h == nil {
		return nil, core.NewDomainError(core.ModuleEncoder, core.ErrorCodeInvalidInput, "encoder: habit is nil")
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}

	out := map[string]float64{
		"minutes":    e.Norm.Scale("minutes", float64(h.Minutes)),
		"difficulty": float64(h.Difficulty-1) / 4,
	}
	if h.Frequency == core.FrequencyDaily {
		out["freq_daily"] = 1.0
	}
	merge(out, e.Categories.EncodeOne("cat_", h.Category))
	merge(out, e.Activities.EncodeOne("act_", h.ActivityType))
	merge(out, e.Text.Vectorize("txt_", h.Description))

	e.recordUsage(ctx, out)
	return out, nil
}

// CrossFeatures 生成用户-习惯交叉特征，供成功率预测模型使用：
// 类别匹配、活动匹配、时间预算契合、时段契合、年龄契合等。
func (e *Encoder) CrossFeatures(p *core.UserProfile, h *core.Habit) map[string]float64 {
	out := make(map[string]float64, 8)
	if p == nil || h == nil {
		return out
	}

	if p.ImprovementAreas[h.Category] {
		out["cross_category_match"] = 1.0
	}
	if p.ActivityPreferences[h.ActivityType] {
		out["cross_activity_match"] = 1.0
	}
	if budget := core.CommitmentMinutes(p.TimeCommitment); budget > 0 && h.Minutes > 0 {
		fit := float64(budget) / float64(h.Minutes)
		if fit > 1 {
			fit = 1
		}
		out["cross_minutes_fit"] = fit
	}
	if p.Age >= h.MinAge && p.Age <= h.MaxAge {
		out["cross_age_fit"] = 1.0
	}
	userTime := p.PreferredTimeOfDay()
	if userTime != core.TimeAny && (h.PreferredTime == userTime || h.PreferredTime == core.TimeAny || h.PreferredTime == "") {
		out["cross_time_fit"] = 1.0
	}
	if p.Summary != nil {
		out["cross_completion_rate"] = p.Summary.CompletionRate
	}
	return out
}

// PairFeatures 将用户向量、习惯向量与交叉特征拼接为成功率模型的输入。
// 用户/习惯子空间共用 cat_/act_/txt_ 轴名，拼接时加 u_/h_ 前缀避免互相覆盖。
// 训练与推理必须走同一个拼接函数，否则特征名对不上。
func PairFeatures(user, habit, cross map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(user)+len(habit)+len(cross))
	for k, v := range user {
		out["u_"+k] = v
	}
	for k, v := range habit {
		out["h_"+k] = v
	}
	for k, v := range cross {
		out[k] = v
	}
	return out
}

func (e *Encoder) recordMissing(ctx context.Context, field, entityID string) {
	if e.Monitor != nil {
		e.Monitor.RecordMissing(ctx, field, entityID)
	}
}

func (e *Encoder) recordUsage(ctx context.Context, features map[string]float64) {
	if e.Monitor == nil {
		return
	}
	for k, v := range features {
		e.Monitor.RecordUsage(ctx, k, v)
	}
}

func merge(dst, src map[string]float64) {
	for k, v := range src {
		dst[k] = v
	}
}
