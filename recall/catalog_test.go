package recall

import (
	"context"
	"testing"

	"github.com/rushteam/habitkit/core"
)

func testCatalog() *core.Catalog {
	return core.NewCatalog("v1", []*core.Habit{
		{ID: "h2", Category: "finance", Minutes: 10, Difficulty: 2, Frequency: core.FrequencyDaily, MinAge: 18, MaxAge: 90, ActivityType: "social"},
		{ID: "h1", Category: "health", Minutes: 15, Difficulty: 1, Frequency: core.FrequencyDaily, MinAge: 13, MaxAge: 90, ActivityType: "physical"},
		{ID: "h3", Category: "health", Minutes: 30, Difficulty: 3, Frequency: core.FrequencyWeekly, MinAge: 13, MaxAge: 60, ActivityType: "mental"},
	})
}

func TestCatalogRecallAll(t *testing.T) {
	r := &CatalogRecall{Catalog: testCatalog()}
	items, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Recall() len = %d, want 3", len(items))
	}
	// 目录快照按 ID 升序，发射顺序应与之一致
	for i, want := range []string{"h1", "h2", "h3"} {
		if items[i].ID != want {
			t.Errorf("items[%d].ID = %s, want %s", i, items[i].ID, want)
		}
	}
	if got := items[0].Meta["category"]; got != "health" {
		t.Errorf("meta category = %v, want health", got)
	}
	if lbl, ok := items[0].GetLabel("catalog_version"); !ok || lbl.Value != "v1" {
		t.Errorf("catalog_version label = %v,%v", lbl, ok)
	}
}

func TestCatalogRecallFocusAreas(t *testing.T) {
	r := &CatalogRecall{Catalog: testCatalog(), FocusAreas: true}
	rctx := &core.RecommendContext{
		UserID: "u1",
		User: &core.UserProfile{
			UserID:           "u1",
			Age:              30,
			ImprovementAreas: map[string]bool{"health": true},
		},
	}
	items, err := r.Recall(context.Background(), rctx)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Recall() len = %d, want 2 (health only)", len(items))
	}

	// 改进领域与目录类别无交集时回退全量
	rctx.User.ImprovementAreas = map[string]bool{"unknown_area": true}
	items, err = r.Recall(context.Background(), rctx)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Recall() len = %d, want 3 (fallback to full catalog)", len(items))
	}
}

func TestCatalogRecallEmpty(t *testing.T) {
	r := &CatalogRecall{Catalog: core.NewCatalog("v1", nil)}
	_, err := r.Recall(context.Background(), &core.RecommendContext{UserID: "u1"})
	if !core.IsInsufficientData(err) {
		t.Errorf("Recall(empty catalog) error = %v, want INSUFFICIENT_DATA", err)
	}
}
