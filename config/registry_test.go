package config_test

import (
	"strings"
	"testing"

	"github.com/rushteam/habitkit/config"
	_ "github.com/rushteam/habitkit/config/builders"
	"github.com/rushteam/habitkit/pipeline"
	"github.com/rushteam/habitkit/rerank"
)

func TestDefaultFactoryBuildsPipeline(t *testing.T) {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Name = "habit_rec"
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "filter", Config: map[string]interface{}{
			"filters": []interface{}{
				map[string]interface{}{"type": "prerequisite"},
				map[string]interface{}{"type": "rule", "rule": `item.meta.minutes > 60`},
			},
		}},
		{Type: "rerank.diversity", Config: map[string]interface{}{"top_n": 5, "threshold": 0.9}},
		{Type: "rerank.context_penalty", Config: map[string]interface{}{"active_penalty": 0.4}},
		{Type: "rerank.topn", Config: map[string]interface{}{"n": 10}},
		{Type: "explain", Config: map[string]interface{}{"max_factors": 2}},
	}

	if err := config.ValidatePipelineConfig(cfg); err != nil {
		t.Fatalf("ValidatePipelineConfig() error = %v", err)
	}
	p, err := cfg.BuildPipeline(config.DefaultFactory())
	if err != nil {
		t.Fatalf("BuildPipeline() error = %v", err)
	}
	if len(p.Nodes) != 5 {
		t.Fatalf("len(Nodes) = %d, want 5", len(p.Nodes))
	}

	div, ok := p.Nodes[1].(*rerank.Diversity)
	if !ok {
		t.Fatalf("Nodes[1] = %T, want *rerank.Diversity", p.Nodes[1])
	}
	if div.TopN != 5 || div.Threshold != 0.9 {
		t.Errorf("Diversity = %+v, want TopN=5 Threshold=0.9", div)
	}
}

func TestValidatePipelineConfigUnknownType(t *testing.T) {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "rank.magic"}}

	err := config.ValidatePipelineConfig(cfg)
	if err == nil {
		t.Fatal("ValidatePipelineConfig() = nil, want error")
	}
	if !strings.Contains(err.Error(), "rank.magic") {
		t.Errorf("error = %v, want mention of rank.magic", err)
	}
}

func TestSupportedTypesSorted(t *testing.T) {
	types := config.SupportedTypes()
	if len(types) == 0 {
		t.Fatal("SupportedTypes() is empty")
	}
	for i := 1; i < len(types); i++ {
		if types[i-1] > types[i] {
			t.Fatalf("types not sorted: %v", types)
		}
	}
}

func TestArtifactNodesRejectConfigBuild(t *testing.T) {
	for _, typ := range []string{"recall.catalog", "rank.fusion"} {
		if _, err := config.DefaultFactory().Build(typ, nil); err == nil {
			t.Errorf("Build(%q) = nil error, want artifact assembly error", typ)
		}
	}
}
