package feast

import (
	"context"
	"time"
)

// Client 是 Feast Feature Store 的客户端接口。
//
// habitkit 用 Feast 承载离线统计出的扩展特征（全局采纳率、习惯平均完成率等），
// 这些特征由离线任务物化到 Feast 在线存储，推荐请求时按实体拉取。
// 画像/目录的结构化字段不走 Feast，它们直接来自业务存储。
type Client interface {
	// GetOnlineFeatures 获取在线特征（实时打分用）
	//
	// 参数：
	//   - features: 特征名称列表，例如 ["habit_stats:adoption_rate"]
	//   - entityRows: 实体行，例如 [{"habit_id": "h1"}]
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表，例如 ["habit_stats:adoption_rate"]
	Features []string

	// EntityRows 实体行，例如 [{"habit_id": "h1"}, {"habit_id": "h2"}]
	EntityRows []map[string]interface{}

	// Project 项目名称（可选，缺省用客户端配置的项目）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	// FeatureVectors 特征向量列表，每个元素对应一个实体行
	FeatureVectors []FeatureVector
}

// FeatureVector 特征向量
type FeatureVector struct {
	// Values 特征值，key 为特征名称
	Values map[string]interface{}

	// EntityRow 对应的实体行
	EntityRow map[string]interface{}
}

// ClientOption 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig 客户端配置
type ClientConfig struct {
	// Timeout 单次请求超时时间
	Timeout time.Duration

	// StaticToken 静态 Token 认证（可选）
	StaticToken string
}

// WithTimeout 配置选项：设置超时时间
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithStaticToken 配置选项：设置静态 Token 认证
func WithStaticToken(token string) ClientOption {
	return func(c *ClientConfig) {
		c.StaticToken = token
	}
}
