package core

import "github.com/rushteam/habitkit/pkg/utils"

// RecommendContext 承载用户/场景/请求级信息，贯穿整个 Pipeline 透传。
// 请求期间只读：模型、归一化参数、词表等共享状态一律不允许被单次请求修改。
type RecommendContext struct {
	UserID string
	Scene  string

	// User 是强类型用户画像（含交互日志派生的完成历史摘要）
	User *UserProfile

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	// 例如：冷启动（collaborative_disabled）、降级（degraded）等
	Labels map[string]utils.Label

	// Params 请求级上下文参数，例如 time_of_day、locale 等
	Params map[string]any
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
