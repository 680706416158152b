package habitkit

import (
	"context"

	"github.com/rushteam/habitkit/artifact"
	"github.com/rushteam/habitkit/core"
	"github.com/rushteam/habitkit/explain"
	"github.com/rushteam/habitkit/feature"
	"github.com/rushteam/habitkit/filter"
	"github.com/rushteam/habitkit/pipeline"
	"github.com/rushteam/habitkit/rank"
	"github.com/rushteam/habitkit/recall"
	"github.com/rushteam/habitkit/rerank"
)

// Request 是一次推荐请求。
type Request struct {
	// Profile 用户画像，请求期间只读
	Profile *core.UserProfile

	// N 返回条数上限，<=0 表示不截断
	N int

	// Locale 解释文本语言，默认 en
	Locale string

	// Params 请求级上下文参数（如 time_of_day），透传给各 Node
	Params map[string]any
}

// Recommender 把训练工件、习惯目录与默认推荐链路装配在一起。
//
// 一个 Recommender 钉在一个工件版本与一个目录快照上：换版本就换实例，
// 请求期间所有 Node 读到的模型参数来自同一版本，没有中间状态。
// 并发安全：装配完成后所有字段只读。
type Recommender struct {
	Bundle  *artifact.Bundle
	Catalog *core.Catalog

	// FocusAreas 是否按用户改进领域收窄召回（目录较大时开启）
	FocusAreas bool

	// Features 可选：外部特征服务（KV 物化或 Feast），扩展特征注入打分链路。
	// 必须与训练侧 Trainer.Features 指向同一服务，特征名才对得上。
	Features core.FeatureService

	// MaxFactors 每条解释最多引用的因子数，默认 3
	MaxFactors int

	// Base 自定义基础链路（召回到重排，不含截断与解释）；为 nil 时使用默认装配
	Base *pipeline.Pipeline
}

// NewRecommender 用工件与目录装配一个默认链路的 Recommender。
func NewRecommender(bundle *artifact.Bundle, catalog *core.Catalog) (*Recommender, error) {
	if bundle == nil || bundle.Encoder == nil {
		return nil, core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInvalidInput, "recommender: artifact bundle with encoder is required")
	}
	if catalog == nil || catalog.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInvalidInput, "recommender: habit catalog is required")
	}
	return &Recommender{Bundle: bundle, Catalog: catalog}, nil
}

// Recommend 执行一次推荐：候选 → 特征注入 → 过滤 → 三路融合排序 →
// 多样性/上下文重排 → 截断 → 因子抽取与解释渲染，返回按综合得分降序的推荐列表。
func (r *Recommender) Recommend(ctx context.Context, req *Request) ([]core.Recommendation, error) {
	if req == nil || req.Profile == nil {
		return nil, core.NewDomainError(core.ModuleArtifact, core.ErrorCodeInvalidInput, "recommend: profile is required")
	}
	if err := req.Profile.Validate(); err != nil {
		return nil, err
	}

	params := make(map[string]any, len(req.Params)+1)
	for k, v := range req.Params {
		params[k] = v
	}
	if req.Locale != "" {
		params["locale"] = req.Locale
	}
	rctx := &core.RecommendContext{
		UserID: req.Profile.UserID,
		Scene:  "habit_rec",
		User:   req.Profile,
		Params: params,
	}

	base := r.Base
	if base == nil {
		base = r.defaultBase()
	}
	items, err := base.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	// 截断后再做因子抽取，只为最终返回的条目渲染解释
	tail := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&rerank.TopNNode{N: req.N},
		&explain.Node{MaxFactors: r.MaxFactors},
	}}
	items, err = tail.Run(ctx, rctx, items)
	if err != nil {
		return nil, err
	}

	out := make([]core.Recommendation, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		rec := core.Recommendation{
			HabitID: it.ID,
			Score:   it.Score,
			Flags:   collectFlags(rctx, it),
		}
		if factors, ok := it.Meta["factors"].([]core.FactorScore); ok {
			rec.Factors = factors
		}
		if text, ok := it.Meta["explanation"].(string); ok {
			rec.Explanation = text
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *Recommender) defaultBase() *pipeline.Pipeline {
	return &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.Fanout{Sources: []recall.Source{
			&recall.CatalogRecall{
				Catalog:    r.Catalog,
				Encoder:    r.Bundle.Encoder,
				FocusAreas: r.FocusAreas,
			},
		}},
		&feature.EnrichNode{Service: r.Features},
		&filter.FilterNode{Filters: []filter.Filter{
			&filter.PrerequisiteFilter{},
		}},
		&rank.Fusion{
			Encoder:  r.Bundle.Encoder,
			MF:       r.Bundle.MF,
			Success:  r.Bundle.Success,
			Policy:   r.Bundle.Policy,
			Features: r.Features,
		},
		&rerank.Diversity{},
		&rerank.ContextPenalty{},
	}}
}

// collectFlags 汇总降级/冷启动标记，顺序固定保证确定性。
func collectFlags(rctx *core.RecommendContext, it *core.Item) []string {
	var flags []string
	for _, key := range []string{"collaborative_disabled", "features_unavailable"} {
		if _, ok := rctx.GetLabel(key); ok {
			flags = append(flags, key)
		}
	}
	for _, key := range []string{"degraded", "uncalibrated"} {
		if _, ok := it.GetLabel(key); ok {
			flags = append(flags, key)
		}
	}
	return flags
}
