package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/habitkit/core"
)

func TestContextPenaltyActiveHabit(t *testing.T) {
	active := scoredItem("h-active", "health", 0.9, nil)
	fresh := scoredItem("h-fresh", "finance", 0.8, nil)

	rctx := &core.RecommendContext{
		UserID: "u1",
		User: &core.UserProfile{
			UserID:  "u1",
			Summary: &core.CompletionSummary{ActiveHabits: map[string]bool{"h-active": true}},
		},
	}
	n := &ContextPenalty{}

	out, err := n.Process(context.Background(), rctx, []*core.Item{active, fresh})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	// 0.9*0.5=0.45 < 0.8，进行中的习惯被压到后面但没有被移除
	if out[0].ID != "h-fresh" || out[1].ID != "h-active" {
		t.Errorf("order = [%s %s], want [h-fresh h-active]", out[0].ID, out[1].ID)
	}
	if out[1].Score != 0.45 {
		t.Errorf("penalized score = %v, want 0.45", out[1].Score)
	}
	if _, ok := out[1].GetLabel("active_habit"); !ok {
		t.Error("missing active_habit label")
	}
}

func TestContextPenaltyTimeMismatch(t *testing.T) {
	morning := scoredItem("h-morning", "health", 0.8, nil)
	morning.Meta["preferred_time"] = "morning"
	evening := scoredItem("h-evening", "health", 0.78, nil)
	evening.Meta["preferred_time"] = "evening"
	anyTime := scoredItem("h-any", "health", 0.7, nil)

	rctx := &core.RecommendContext{
		UserID: "u1",
		User:   &core.UserProfile{UserID: "u1"},
		Params: map[string]any{"time_of_day": "evening"},
	}
	n := &ContextPenalty{}

	out, err := n.Process(context.Background(), rctx, []*core.Item{morning, evening, anyTime})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	// morning 习惯被降权 0.8*0.8=0.64，落到 evening(0.78) 和 any(0.7) 之后
	if out[0].ID != "h-evening" || out[1].ID != "h-any" || out[2].ID != "h-morning" {
		t.Errorf("order = [%s %s %s]", out[0].ID, out[1].ID, out[2].ID)
	}
	if _, ok := out[2].GetLabel("time_mismatch"); !ok {
		t.Error("missing time_mismatch label")
	}
}

func TestContextPenaltyNoContext(t *testing.T) {
	it := scoredItem("h1", "health", 0.9, nil)
	n := &ContextPenalty{}
	out, err := n.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, []*core.Item{it})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if out[0].Score != 0.9 {
		t.Errorf("score changed without user context: %v", out[0].Score)
	}
}

func TestTopN(t *testing.T) {
	items := []*core.Item{
		scoredItem("h1", "a", 0.9, nil),
		scoredItem("h2", "b", 0.8, nil),
		scoredItem("h3", "c", 0.7, nil),
	}
	n := &TopNNode{N: 2}
	out, err := n.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 2 {
		t.Errorf("len = %d, want 2", len(out))
	}

	n = &TopNNode{}
	out, _ = n.Process(context.Background(), nil, items)
	if len(out) != 3 {
		t.Errorf("N<=0 must not truncate, len = %d", len(out))
	}
}
