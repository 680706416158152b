package rank

import "github.com/rushteam/habitkit/core"

// AgeFitMultiplier 计算年龄契合乘数。
// 年龄在 [minAge, maxAge] 内为 1.0；低于下限每差一岁扣 0.1，高于上限每超一岁扣 0.05，
// 下限 0.1 保证任何习惯都不会被彻底清零（乘数是软惩罚，不是硬过滤）。
func AgeFitMultiplier(age, minAge, maxAge int) float64 {
	const floor = 0.1
	switch {
	case age < minAge:
		m := 1.0 - 0.1*float64(minAge-age)
		if m < floor {
			return floor
		}
		return m
	case maxAge > 0 && age > maxAge:
		m := 1.0 - 0.05*float64(age-maxAge)
		if m < floor {
			return floor
		}
		return m
	default:
		return 1.0
	}
}

// PreferenceMultiplier 计算偏好契合乘数。
// 活动类型精确命中用户偏好集合 → 1.2；
// 习惯类别命中用户改进领域（部分契合）→ 1.1；
// 两者都不沾边 → 0.9。有界的加成/降权，不做硬过滤。
func PreferenceMultiplier(user *core.UserProfile, activityType, category string) float64 {
	if user == nil {
		return 1.0
	}
	if activityType != "" && user.ActivityPreferences[activityType] {
		return 1.2
	}
	if category != "" && user.ImprovementAreas[category] {
		return 1.1
	}
	return 0.9
}
