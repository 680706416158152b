package model

import (
	"reflect"
	"testing"
	"time"

	"github.com/rushteam/habitkit/core"
)

func TestBuildInteractionMatrix(t *testing.T) {
	now := time.Now()
	records := []core.Interaction{
		{UserID: "u2", HabitID: "h1", Timestamp: now, Completed: true},
		{UserID: "u1", HabitID: "h1", Timestamp: now, Completed: true},
		{UserID: "u1", HabitID: "h1", Timestamp: now, Completed: false},
		{UserID: "u1", HabitID: "h2", Timestamp: now, Completed: true},
		{UserID: "", HabitID: "h9", Timestamp: now, Completed: true}, // 脏数据，应被跳过
	}
	m := BuildInteractionMatrix(records)

	if !reflect.DeepEqual(m.Users(), []string{"u1", "u2"}) {
		t.Errorf("Users() = %v, want [u1 u2]", m.Users())
	}
	if !reflect.DeepEqual(m.Habits(), []string{"h1", "h2"}) {
		t.Errorf("Habits() = %v, want [h1 h2]", m.Habits())
	}
	if got, ok := m.Strength("u1", "h1"); !ok || got != 0.5 {
		t.Errorf("Strength(u1,h1) = %v,%v, want 0.5,true", got, ok)
	}
	if got, ok := m.Strength("u1", "h2"); !ok || got != 1 {
		t.Errorf("Strength(u1,h2) = %v,%v, want 1,true", got, ok)
	}
	if _, ok := m.Strength("u2", "h2"); ok {
		t.Error("Strength(u2,h2) should be absent")
	}
	if m.NonZero() != 3 {
		t.Errorf("NonZero() = %d, want 3", m.NonZero())
	}
}
