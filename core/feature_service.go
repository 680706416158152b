package core

import "context"

// FeatureService 是特征服务的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（feature / feast）实现
//   - 请求级上下文特征（time_of_day 等）通过 RecommendContext.Params 传递，
//     而不是通过 FeatureService 获取
//
// 使用场景：
//   - 获取用户画像的扩展特征（外部画像系统、Feast 在线特征）
//   - 获取习惯的统计特征（全局采纳率、平均完成率等）
type FeatureService interface {
	// Name 返回特征服务名称（用于日志/监控）
	Name() string

	// GetUserFeatures 获取用户特征（单个用户）
	GetUserFeatures(ctx context.Context, userID string) (map[string]float64, error)

	// BatchGetUserFeatures 批量获取用户特征
	BatchGetUserFeatures(ctx context.Context, userIDs []string) (map[string]map[string]float64, error)

	// GetHabitFeatures 获取习惯特征（单个习惯）
	GetHabitFeatures(ctx context.Context, habitID string) (map[string]float64, error)

	// BatchGetHabitFeatures 批量获取习惯特征
	BatchGetHabitFeatures(ctx context.Context, habitIDs []string) (map[string]map[string]float64, error)

	// Close 关闭特征服务，释放资源
	Close(ctx context.Context) error
}

// 特征服务错误定义
var (
	// ErrFeatureNotFound 表示特征不存在
	ErrFeatureNotFound = NewDomainError(ModuleFeature, ErrorCodeNotFound, "feature: not found")

	// ErrFeatureServiceUnavailable 表示特征服务不可用
	ErrFeatureServiceUnavailable = NewDomainError(ModuleFeature, ErrorCodeUnavailable, "feature: service unavailable")
)
