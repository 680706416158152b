// Package builders 注册内置 Node 的配置构建器。
// 在入口处 import _ "github.com/rushteam/habitkit/config/builders" 即可启用配置驱动装配。
package builders

import (
	"fmt"

	"github.com/rushteam/habitkit/config"
	"github.com/rushteam/habitkit/explain"
	"github.com/rushteam/habitkit/feature"
	"github.com/rushteam/habitkit/filter"
	"github.com/rushteam/habitkit/pipeline"
	"github.com/rushteam/habitkit/pkg/conv"
	"github.com/rushteam/habitkit/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("rerank.context_penalty", BuildContextPenaltyNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("explain", BuildExplainNode)
	config.Register("feature.enrich", BuildEnrichNode)
	config.Register("recall.catalog", BuildCatalogNode)
	config.Register("rank.fusion", BuildFusionNode)
}

func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "prerequisite":
			filters = append(filters, &filter.PrerequisiteFilter{})
		case "rule":
			rule := conv.ConfigGet(filterMap, "rule", "")
			filters = append(filters, &filter.RuleFilter{Rule: rule})
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func BuildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.Diversity{
		TopN:      int(conv.ConfigGetInt64(cfg, "top_n", 0)),
		Threshold: conv.ConfigGetFloat64(cfg, "threshold", 0),
	}, nil
}

func BuildContextPenaltyNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.ContextPenalty{
		ActivePenalty:       conv.ConfigGetFloat64(cfg, "active_penalty", 0),
		TimeMismatchPenalty: conv.ConfigGetFloat64(cfg, "time_mismatch_penalty", 0),
	}, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}

func BuildExplainNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &explain.Node{MaxFactors: int(conv.ConfigGetInt64(cfg, "max_factors", 0))}, nil
}

func BuildEnrichNode(cfg map[string]interface{}) (pipeline.Node, error) {
	// 特征服务连接由 Recommender 程序化注入，配置只决定合并前缀；
	// 未注入服务时该 Node 原样透传
	return &feature.EnrichNode{
		HabitFeaturePrefix: conv.ConfigGet(cfg, "habit_feature_prefix", ""),
	}, nil
}

func BuildCatalogNode(cfg map[string]interface{}) (pipeline.Node, error) {
	// 召回需要目录与编码器工件，无法从静态配置构建，由 Recommender 程序化装配
	return nil, fmt.Errorf("recall.catalog requires a catalog and a published artifact; assemble it programmatically")
}

func BuildFusionNode(cfg map[string]interface{}) (pipeline.Node, error) {
	// 融合排序钉在工件版本上，无法从静态配置构建，由 Recommender 程序化装配
	return nil, fmt.Errorf("rank.fusion requires a published artifact; assemble it programmatically")
}
