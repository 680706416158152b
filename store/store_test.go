package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/habitkit/core"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	if _, err := m.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(missing) error = %v, want not found", err)
	}

	if err := m.Set(ctx, "k1", []byte("v1")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := m.Get(ctx, "k1")
	if err != nil || string(got) != "v1" {
		t.Errorf("Get(k1) = %s,%v", got, err)
	}

	if err := m.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := m.Get(ctx, "k1"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(deleted) error = %v, want not found", err)
	}
}

func TestMemoryStoreBatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	if err := m.BatchSet(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}); err != nil {
		t.Fatalf("BatchSet() error = %v", err)
	}
	got, err := m.BatchGet(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("BatchGet() error = %v", err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Errorf("BatchGet() = %v", got)
	}
}

func TestMemoryStoreZSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	defer m.Close()

	for member, score := range map[string]float64{"old": 1, "mid": 2, "new": 3} {
		if err := m.ZAdd(ctx, "z", score, member); err != nil {
			t.Fatalf("ZAdd() error = %v", err)
		}
	}

	got, err := m.ZRange(ctx, "z", 0, -1)
	if err != nil {
		t.Fatalf("ZRange() error = %v", err)
	}
	want := []string{"new", "mid", "old"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ZRange() = %v, want %v", got, want)
		}
	}

	top, _ := m.ZRange(ctx, "z", 0, 0)
	if len(top) != 1 || top[0] != "new" {
		t.Errorf("ZRange(0,0) = %v", top)
	}

	if score, err := m.ZScore(ctx, "z", "mid"); err != nil || score != 2 {
		t.Errorf("ZScore(mid) = %v,%v", score, err)
	}
	if _, err := m.ZScore(ctx, "z", "none"); !core.IsStoreNotFound(err) {
		t.Errorf("ZScore(none) error = %v, want not found", err)
	}
}

func TestInteractionLogRoundTrip(t *testing.T) {
	ctx := context.Background()
	log := NewInteractionLog(NewMemoryStore())

	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	records := []core.Interaction{
		{UserID: "u1", HabitID: "h1", Timestamp: base, Completed: true},
		{UserID: "u1", HabitID: "h2", Timestamp: base.Add(time.Hour), Completed: false},
		{UserID: "u2", HabitID: "h1", Timestamp: base.Add(2 * time.Hour), Completed: true},
	}
	for _, rec := range records {
		if err := log.Append(ctx, rec); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	history, err := log.UserHistory(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("UserHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("UserHistory(u1) len = %d, want 2", len(history))
	}
	// 从新到旧
	if history[0].HabitID != "h2" || history[1].HabitID != "h1" {
		t.Errorf("UserHistory order = [%s %s]", history[0].HabitID, history[1].HabitID)
	}

	all, err := log.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Snapshot() len = %d, want 3", len(all))
	}
}

func TestInteractionLogRejectsEmptyIDs(t *testing.T) {
	log := NewInteractionLog(NewMemoryStore())
	err := log.Append(context.Background(), core.Interaction{HabitID: "h1"})
	if !core.IsInvalidInput(err) {
		t.Errorf("Append() error = %v, want INVALID_INPUT", err)
	}
}
