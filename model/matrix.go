package model

import (
	"sort"

	"github.com/rushteam/habitkit/core"
)

// InteractionMatrix 是稀疏的用户-习惯交互矩阵。
// 每个训练周期从交互日志快照重建；它是派生的、可丢弃的工件，不作为主状态持久化。
// 交互强度 = 该用户-习惯对的完成率（完成次数 / 交互次数）。
type InteractionMatrix struct {
	users  []string
	habits []string
	cells  map[string]map[string]float64 // userID -> habitID -> strength
}

// BuildInteractionMatrix 从交互日志快照构建矩阵。输入顺序不影响结果。
func BuildInteractionMatrix(records []core.Interaction) *InteractionMatrix {
	type pairStat struct {
		total     int
		completed int
	}
	stats := make(map[string]map[string]*pairStat)
	userSet := make(map[string]bool)
	habitSet := make(map[string]bool)

	for _, r := range records {
		if r.UserID == "" || r.HabitID == "" {
			continue
		}
		userSet[r.UserID] = true
		habitSet[r.HabitID] = true
		byHabit, ok := stats[r.UserID]
		if !ok {
			byHabit = make(map[string]*pairStat)
			stats[r.UserID] = byHabit
		}
		ps, ok := byHabit[r.HabitID]
		if !ok {
			ps = &pairStat{}
			byHabit[r.HabitID] = ps
		}
		ps.total++
		if r.Completed {
			ps.completed++
		}
	}

	m := &InteractionMatrix{
		users:  sortedKeys(userSet),
		habits: sortedKeys(habitSet),
		cells:  make(map[string]map[string]float64, len(stats)),
	}
	for userID, byHabit := range stats {
		row := make(map[string]float64, len(byHabit))
		for habitID, ps := range byHabit {
			row[habitID] = float64(ps.completed) / float64(ps.total)
		}
		m.cells[userID] = row
	}
	return m
}

// Users 返回按 ID 升序排列的用户列表。
func (m *InteractionMatrix) Users() []string { return m.users }

// Habits 返回按 ID 升序排列的习惯列表。
func (m *InteractionMatrix) Habits() []string { return m.habits }

// Strength 返回单元格的交互强度；无交互返回 (0, false)。
func (m *InteractionMatrix) Strength(userID, habitID string) (float64, bool) {
	row, ok := m.cells[userID]
	if !ok {
		return 0, false
	}
	v, ok := row[habitID]
	return v, ok
}

// Row 返回某用户的整行（habitID -> strength）；调用方不得修改。
func (m *InteractionMatrix) Row(userID string) map[string]float64 {
	return m.cells[userID]
}

// NonZero 返回非零单元格数量。
func (m *InteractionMatrix) NonZero() int {
	n := 0
	for _, row := range m.cells {
		n += len(row)
	}
	return n
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
