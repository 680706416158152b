package core

import "sort"

// Frequency 表示习惯的执行频率。
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// TimeOfDay 表示一天中的时段，用于时间契合度计算。
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"   // 05:00 - 11:59
	TimeAfternoon TimeOfDay = "afternoon" // 12:00 - 17:59
	TimeEvening   TimeOfDay = "evening"   // 18:00 - 04:59
	TimeAny       TimeOfDay = "any"
)

// TimeOfDayForHour 将小时（0-23）归入时段。
func TimeOfDayForHour(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 12:
		return TimeMorning
	case hour >= 12 && hour < 18:
		return TimeAfternoon
	default:
		return TimeEvening
	}
}

// Habit 是习惯目录中的一条定义。
// 进入 Catalog 快照后即视为不可变：一次推荐请求内所有 Node 读到的都是同一份定义。
type Habit struct {
	ID            string    `json:"id" yaml:"id"`
	Category      string    `json:"category" yaml:"category"`
	Description   string    `json:"description" yaml:"description"`
	Minutes       int       `json:"minutes" yaml:"minutes"`       // 预计每次耗时（分钟，正数）
	Difficulty    int       `json:"difficulty" yaml:"difficulty"` // 1-5
	Frequency     Frequency `json:"frequency" yaml:"frequency"`
	MinAge        int       `json:"min_age" yaml:"min_age"`
	MaxAge        int       `json:"max_age" yaml:"max_age"`
	ActivityType  string    `json:"activity_type" yaml:"activity_type"`
	Prerequisites []string  `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	PreferredTime TimeOfDay `json:"preferred_time,omitempty" yaml:"preferred_time,omitempty"`
}

// Validate 校验习惯定义的字段合法性，返回指明字段的错误。
func (h *Habit) Validate() error {
	if h.ID == "" {
		return NewDomainError(ModuleEncoder, ErrorCodeInvalidInput, "habit: id is empty")
	}
	if h.Minutes <= 0 {
		return NewDomainError(ModuleEncoder, ErrorCodeInvalidInput, "habit "+h.ID+": minutes must be positive")
	}
	if h.Difficulty < 1 || h.Difficulty > 5 {
		return NewDomainError(ModuleEncoder, ErrorCodeInvalidInput, "habit "+h.ID+": difficulty out of range [1,5]")
	}
	if h.Frequency != FrequencyDaily && h.Frequency != FrequencyWeekly {
		return NewDomainError(ModuleEncoder, ErrorCodeInvalidInput, "habit "+h.ID+": frequency must be daily or weekly")
	}
	if h.MinAge > h.MaxAge {
		return NewDomainError(ModuleEncoder, ErrorCodeInvalidInput, "habit "+h.ID+": min_age greater than max_age")
	}
	return nil
}

// Catalog 是习惯目录的只读快照。
// 一次推荐请求 / 一次训练任务始终钉在一个快照版本上，核心层不负责目录的持久化。
type Catalog struct {
	Version string
	habits  []*Habit
	index   map[string]*Habit
}

// NewCatalog 构建目录快照。习惯按 ID 升序排列，保证遍历顺序确定。
func NewCatalog(version string, habits []*Habit) *Catalog {
	sorted := make([]*Habit, 0, len(habits))
	index := make(map[string]*Habit, len(habits))
	for _, h := range habits {
		if h == nil {
			continue
		}
		if _, ok := index[h.ID]; ok {
			continue
		}
		index[h.ID] = h
		sorted = append(sorted, h)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return &Catalog{Version: version, habits: sorted, index: index}
}

// Get 按 ID 查找习惯，不存在时返回 nil。
func (c *Catalog) Get(id string) *Habit {
	if c == nil {
		return nil
	}
	return c.index[id]
}

// All 返回按 ID 升序排列的全部习惯。调用方不得修改返回的切片。
func (c *Catalog) All() []*Habit {
	if c == nil {
		return nil
	}
	return c.habits
}

// Len 返回目录大小。
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.habits)
}

// Categories 返回目录中出现的类别集合。
func (c *Catalog) Categories() map[string]bool {
	out := make(map[string]bool)
	if c == nil {
		return out
	}
	for _, h := range c.habits {
		out[h.Category] = true
	}
	return out
}
