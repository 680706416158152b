package core

import "time"

// TimeCommitment 是用户愿意投入的时间档位（有序）。
type TimeCommitment string

const (
	CommitmentVeryLow TimeCommitment = "very_low" // ~5 分钟
	CommitmentLow     TimeCommitment = "low"      // ~15 分钟
	CommitmentMedium  TimeCommitment = "medium"   // ~30 分钟
	CommitmentHigh    TimeCommitment = "high"     // ~60 分钟
)

// CommitmentMinutes 返回时间档位对应的分钟预算；未知档位返回 0。
func CommitmentMinutes(c TimeCommitment) int {
	switch c {
	case CommitmentVeryLow:
		return 5
	case CommitmentLow:
		return 15
	case CommitmentMedium:
		return 30
	case CommitmentHigh:
		return 60
	}
	return 0
}

// CommitmentOrdinal 返回档位的序号（0-3），用于数值编码；未知档位返回 -1。
func CommitmentOrdinal(c TimeCommitment) int {
	switch c {
	case CommitmentVeryLow:
		return 0
	case CommitmentLow:
		return 1
	case CommitmentMedium:
		return 2
	case CommitmentHigh:
		return 3
	}
	return -1
}

// UserProfile 是用户画像的核心抽象。
//
// 它不是某一个 Node，而是：
//   - 被所有 Node 共享的只读输入（请求期间不可变）
//   - 驱动信号加权、年龄/偏好调整、上下文调权
//   - 完成历史摘要（Summary）由交互日志派生，画像本身不持久化
//
// 不变式：ActivityPreferences / ImprovementAreas 永远非 nil（可以为空集），
// Age 在摄入侧校验/填补之后始终存在。
type UserProfile struct {
	UserID string

	// 静态属性
	Age            int
	LearningStyle  string         // visual / auditory / kinesthetic / reading
	TimeCommitment TimeCommitment // very_low / low / medium / high
	Barriers       string         // 自由文本：阻碍养成习惯的因素

	// 偏好集合（枚举子集）
	ActivityPreferences map[string]bool // Physical / Mental / Social / Creative ...
	ImprovementAreas    map[string]bool // 想要改善的类别

	// 完成历史摘要（由交互日志派生，见 interaction.go）
	Summary *CompletionSummary
}

// NewUserProfile 创建一个新的用户画像，保证集合字段非 nil。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:              userID,
		ActivityPreferences: make(map[string]bool),
		ImprovementAreas:    make(map[string]bool),
	}
}

// Validate 校验画像字段的合法性（年龄域 13-90）。
// 填补规则之外的越界值一律拒绝，不做静默纠正。
func (p *UserProfile) Validate() error {
	if p.UserID == "" {
		return NewDomainError(ModuleEncoder, ErrorCodeInvalidInput, "profile: user_id is empty")
	}
	if p.Age < 13 || p.Age > 90 {
		return NewDomainError(ModuleEncoder, ErrorCodeInvalidInput, "profile "+p.UserID+": age out of range [13,90]")
	}
	if p.ActivityPreferences == nil {
		return NewDomainError(ModuleEncoder, ErrorCodeInvalidInput, "profile "+p.UserID+": activity_preferences must not be nil")
	}
	return nil
}

// InteractionCount 返回历史交互条数（无摘要时为 0，即冷启动）。
func (p *UserProfile) InteractionCount() int {
	if p.Summary == nil {
		return 0
	}
	return p.Summary.InteractionCount
}

// HasActiveHabit 判断某习惯是否已在进行中。
func (p *UserProfile) HasActiveHabit(habitID string) bool {
	if p.Summary == nil || p.Summary.ActiveHabits == nil {
		return false
	}
	return p.Summary.ActiveHabits[habitID]
}

// PreferredTimeOfDay 返回用户历史完成记录最集中的时段；无历史时返回 TimeAny。
func (p *UserProfile) PreferredTimeOfDay() TimeOfDay {
	if p.Summary == nil {
		return TimeAny
	}
	return p.Summary.PreferredTime()
}

// CompletionSummary 是交互日志派生出的完成历史摘要。
// 派生是确定性的：同一份日志快照得到同一份摘要。
type CompletionSummary struct {
	InteractionCount int
	CompletionRate   float64 // 完成比例 [0,1]
	Streak           int     // 连续完成天数
	LastActive       time.Time
	ActiveHabits     map[string]bool
	CompletionHours  [24]int // 完成时刻直方图（小时粒度）
	AvgDeviation     float64 // 实际完成时刻与习惯期望时段的平均偏差（分钟）
}

// PreferredTime 返回完成记录最集中的时段；直方图为空时返回 TimeAny。
// 平局时按 morning < afternoon < evening 的先后取更早出现的时段，保证确定性。
func (s *CompletionSummary) PreferredTime() TimeOfDay {
	if s == nil {
		return TimeAny
	}
	counts := map[TimeOfDay]int{}
	total := 0
	for hour, n := range s.CompletionHours {
		counts[TimeOfDayForHour(hour)] += n
		total += n
	}
	if total == 0 {
		return TimeAny
	}
	best := TimeAny
	bestCount := 0
	for _, tod := range []TimeOfDay{TimeMorning, TimeAfternoon, TimeEvening} {
		if counts[tod] > bestCount {
			best = tod
			bestCount = counts[tod]
		}
	}
	return best
}
