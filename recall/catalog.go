package recall

import (
	"context"
	"strconv"

	"github.com/rushteam/habitkit/core"
	"github.com/rushteam/habitkit/feature"
	"github.com/rushteam/habitkit/pkg/utils"
)

// CatalogRecall 是目录候选源：习惯目录规模有限，默认全量进入候选集，
// 由下游 Filter / Rank 负责裁剪，保证任何习惯都有机会被个性化打分。
//
// FocusAreas=true 时只召回用户改进领域内的习惯（改进领域为空时仍然全量），
// 用于目录变大后的召回收窄。
type CatalogRecall struct {
	Catalog *core.Catalog
	Encoder *feature.Encoder

	// FocusAreas 是否按用户改进领域收窄候选集
	FocusAreas bool
}

func (r *CatalogRecall) Name() string {
	return "recall.catalog"
}

// Recall 发射候选 Item：habit 特征向量挂到 Features，
// 定义字段挂到 Meta，供下游节点读取而不必回查目录。
func (r *CatalogRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Catalog == nil || r.Catalog.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInsufficientData, "recall: empty habit catalog")
	}

	var areas map[string]bool
	if r.FocusAreas && rctx != nil && rctx.User != nil && len(rctx.User.ImprovementAreas) > 0 {
		areas = rctx.User.ImprovementAreas
	}

	candidates := r.Catalog.All()
	if areas != nil {
		narrowed := make([]*core.Habit, 0, len(candidates))
		for _, h := range candidates {
			if areas[h.Category] {
				narrowed = append(narrowed, h)
			}
		}
		// 改进领域在目录中无对应类别时回退全量，避免空结果
		if len(narrowed) > 0 {
			candidates = narrowed
		}
	}

	out := make([]*core.Item, 0, len(candidates))
	for _, h := range candidates {
		it := core.NewItem(h.ID)
		if r.Encoder != nil {
			features, err := r.Encoder.EncodeHabit(ctx, h)
			if err != nil {
				return nil, err
			}
			it.Features = features
		}
		it.Meta["category"] = h.Category
		it.Meta["minutes"] = h.Minutes
		it.Meta["difficulty"] = h.Difficulty
		it.Meta["min_age"] = h.MinAge
		it.Meta["max_age"] = h.MaxAge
		it.Meta["activity_type"] = h.ActivityType
		it.Meta["preferred_time"] = string(h.PreferredTime)
		if len(h.Prerequisites) > 0 {
			it.Meta["prerequisites"] = h.Prerequisites
		}
		it.PutLabel("recall_source", utils.Label{Value: r.Name(), Source: "recall"})
		it.PutLabel("catalog_version", utils.Label{Value: r.Catalog.Version, Source: "recall"})
		out = append(out, it)
	}

	if rctx != nil {
		rctx.PutLabel("candidate_count", utils.Label{Value: strconv.Itoa(len(out)), Source: "recall"})
	}
	return out, nil
}
