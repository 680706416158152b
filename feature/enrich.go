package feature

import (
	"context"

	"github.com/rushteam/habitkit/core"
	"github.com/rushteam/habitkit/pipeline"
	"github.com/rushteam/habitkit/pkg/utils"
)

// 外部扩展特征合并进编码向量时加的前缀，避免与编码器轴名冲突。
// 训练与在线必须用同一组前缀，否则成功率模型的特征名对不上。
const (
	ExternalUserPrefix  = "ext_u_"
	ExternalHabitPrefix = "ext_h_"
)

// MergeExternal 把外部特征服务的输出按前缀合并进编码向量。
func MergeExternal(dst map[string]float64, prefix string, src map[string]float64) {
	for k, v := range src {
		dst[prefix+k] = v
	}
}

// EnrichNode 是特征注入 Node：从外部特征服务批量拉取习惯侧扩展特征
// （全局采纳率、相似人群完成率等），合并进候选特征向量供下游融合排序使用。
//
// 特征服务不可用时不拖垮请求：跳过合并并打 features_unavailable 标签降级。
type EnrichNode struct {
	Service core.FeatureService

	// HabitFeaturePrefix 合并时加在特征名前，默认 ExternalHabitPrefix
	HabitFeaturePrefix string
}

func (n *EnrichNode) Name() string        { return "feature.enrich" }
func (n *EnrichNode) Kind() pipeline.Kind { return pipeline.KindFeature }

func (n *EnrichNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Service == nil || len(items) == 0 {
		return items, nil
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it != nil {
			ids = append(ids, it.ID)
		}
	}
	batch, err := n.Service.BatchGetHabitFeatures(ctx, ids)
	if err != nil {
		rctx.PutLabel("features_unavailable", utils.Label{Value: "true", Source: n.Name()})
		return items, nil
	}

	prefix := n.HabitFeaturePrefix
	if prefix == "" {
		prefix = ExternalHabitPrefix
	}
	for _, it := range items {
		if it == nil || len(batch[it.ID]) == 0 {
			continue
		}
		if it.Features == nil {
			it.Features = make(map[string]float64, len(batch[it.ID]))
		}
		MergeExternal(it.Features, prefix, batch[it.ID])
	}
	return items, nil
}
