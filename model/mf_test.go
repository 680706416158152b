package model

import (
	"testing"
	"time"

	"github.com/rushteam/habitkit/core"
)

func trainingRecords() []core.Interaction {
	now := time.Now()
	var records []core.Interaction
	add := func(userID, habitID string, completed bool, times int) {
		for i := 0; i < times; i++ {
			records = append(records, core.Interaction{
				UserID: userID, HabitID: habitID, Timestamp: now, Completed: completed,
			})
		}
	}
	// u1 和 u2 口味接近（都坚持 h1），u3 只坚持 h2
	add("u1", "h1", true, 5)
	add("u1", "h2", false, 3)
	add("u2", "h1", true, 4)
	add("u3", "h2", true, 5)
	add("u3", "h1", false, 2)
	return records
}

func TestFitMFDeterministic(t *testing.T) {
	matrix := BuildInteractionMatrix(trainingRecords())
	a, err := FitMF(matrix, nil)
	if err != nil {
		t.Fatalf("FitMF() error = %v", err)
	}
	b, err := FitMF(matrix, nil)
	if err != nil {
		t.Fatalf("FitMF() error = %v", err)
	}
	for _, userID := range matrix.Users() {
		for _, habitID := range matrix.Habits() {
			if a.Score(userID, habitID) != b.Score(userID, habitID) {
				t.Fatalf("Score(%s,%s) differs between identical fits", userID, habitID)
			}
		}
	}
}

func TestFitMFColdStart(t *testing.T) {
	m, err := FitMF(BuildInteractionMatrix(trainingRecords()), nil)
	if err != nil {
		t.Fatalf("FitMF() error = %v", err)
	}
	if got := m.Score("unknown-user", "h1"); got != 0 {
		t.Errorf("cold-start user Score() = %v, want 0", got)
	}
	if got := m.Score("u1", "unknown-habit"); got != 0 {
		t.Errorf("cold-start habit Score() = %v, want 0", got)
	}
	if m.UserVector("unknown-user") != nil {
		t.Error("UserVector(unknown) should be nil")
	}
}

func TestFitMFKClamped(t *testing.T) {
	matrix := BuildInteractionMatrix(trainingRecords())
	tests := []struct {
		name string
		k    int
		want int
	}{
		{"default", 0, 20},
		{"below floor", 3, 10},
		{"above ceiling", 100, 50},
		{"in range", 16, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := FitMF(matrix, &MFOptions{K: tt.k, Epochs: 1})
			if err != nil {
				t.Fatalf("FitMF() error = %v", err)
			}
			if m.K != tt.want {
				t.Errorf("K = %d, want %d", m.K, tt.want)
			}
		})
	}
}

func TestFitMFEmptyMatrix(t *testing.T) {
	_, err := FitMF(BuildInteractionMatrix(nil), nil)
	if !core.IsInsufficientData(err) {
		t.Errorf("FitMF(empty) error = %v, want INSUFFICIENT_DATA", err)
	}
}

func TestFitMFRecoversPreference(t *testing.T) {
	m, err := FitMF(BuildInteractionMatrix(trainingRecords()), nil)
	if err != nil {
		t.Fatalf("FitMF() error = %v", err)
	}
	// u1 对 h1 的完成率远高于 h2，分解应保留这个序
	if m.Score("u1", "h1") <= m.Score("u1", "h2") {
		t.Errorf("Score(u1,h1)=%v should exceed Score(u1,h2)=%v",
			m.Score("u1", "h1"), m.Score("u1", "h2"))
	}
}
