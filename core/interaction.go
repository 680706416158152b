package core

import (
	"sort"
	"time"
)

// Interaction 是一条用户-习惯交互记录。
// 日志只追加、不修改；完成率、连续天数、时段直方图等都由日志派生。
type Interaction struct {
	UserID    string    `json:"user_id"`
	HabitID   string    `json:"habit_id"`
	Timestamp time.Time `json:"timestamp"`
	Completed bool      `json:"completed"`
	Modified  bool      `json:"modified,omitempty"` // 用户调整过时间/频率等
}

// BuildSummary 从一个用户的交互日志快照派生完成历史摘要。
// 输入顺序不影响结果：内部先按时间排序，保证确定性。
func BuildSummary(records []Interaction, now time.Time) *CompletionSummary {
	s := &CompletionSummary{ActiveHabits: make(map[string]bool)}
	if len(records) == 0 {
		return s
	}

	sorted := make([]Interaction, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].HabitID < sorted[j].HabitID
	})

	completed := 0
	completedDays := make(map[string]bool)
	for _, r := range sorted {
		s.InteractionCount++
		s.ActiveHabits[r.HabitID] = true
		if r.Timestamp.After(s.LastActive) {
			s.LastActive = r.Timestamp
		}
		if r.Completed {
			completed++
			s.CompletionHours[r.Timestamp.Hour()]++
			completedDays[r.Timestamp.Format("2006-01-02")] = true
		}
	}
	s.CompletionRate = float64(completed) / float64(s.InteractionCount)
	s.Streak = streakDays(completedDays, now)
	return s
}

// streakDays 统计从 now 往前数的连续完成天数（今天或昨天起算）。
func streakDays(days map[string]bool, now time.Time) int {
	if len(days) == 0 {
		return 0
	}
	day := now
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// OptimalMinute 根据实际完成时刻（分钟-of-day）推荐更合适的执行时间。
// 取实际时刻的均值；只有当均值与当前设定相差超过 2 小时才建议更换，
// 否则保留当前设定（避免对用户频繁改动）。
func OptimalMinute(actual []int, selected int) int {
	if len(actual) < 3 {
		return selected
	}
	total := 0
	for _, m := range actual {
		total += m
	}
	avg := total / len(actual)
	diff := avg - selected
	if diff < 0 {
		diff = -diff
	}
	if diff > 120 {
		return avg
	}
	return selected
}
