package feast

import (
	"context"

	"github.com/rushteam/habitkit/core"
)

// FeatureService 把 Feast 客户端适配成领域层的 core.FeatureService。
// 拉取离线物化的扩展统计特征（用户平均完成率、习惯全局采纳率等），
// 非数值特征在适配层丢弃，领域层只见 map[string]float64。
type FeatureService struct {
	Client Client

	// UserFeatures / HabitFeatures 是要拉取的 Feast 特征名列表
	UserFeatures  []string
	HabitFeatures []string

	// UserEntityKey / HabitEntityKey 是实体主键名，默认 user_id / habit_id
	UserEntityKey  string
	HabitEntityKey string
}

func (s *FeatureService) Name() string { return "feast" }

func (s *FeatureService) GetUserFeatures(ctx context.Context, userID string) (map[string]float64, error) {
	batch, err := s.BatchGetUserFeatures(ctx, []string{userID})
	if err != nil {
		return nil, err
	}
	features, ok := batch[userID]
	if !ok {
		return nil, core.ErrFeatureNotFound
	}
	return features, nil
}

func (s *FeatureService) BatchGetUserFeatures(ctx context.Context, userIDs []string) (map[string]map[string]float64, error) {
	key := s.UserEntityKey
	if key == "" {
		key = "user_id"
	}
	return s.batchGet(ctx, key, userIDs, s.UserFeatures)
}

func (s *FeatureService) GetHabitFeatures(ctx context.Context, habitID string) (map[string]float64, error) {
	batch, err := s.BatchGetHabitFeatures(ctx, []string{habitID})
	if err != nil {
		return nil, err
	}
	features, ok := batch[habitID]
	if !ok {
		return nil, core.ErrFeatureNotFound
	}
	return features, nil
}

func (s *FeatureService) BatchGetHabitFeatures(ctx context.Context, habitIDs []string) (map[string]map[string]float64, error) {
	key := s.HabitEntityKey
	if key == "" {
		key = "habit_id"
	}
	return s.batchGet(ctx, key, habitIDs, s.HabitFeatures)
}

func (s *FeatureService) Close(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Close()
}

func (s *FeatureService) batchGet(ctx context.Context, entityKey string, ids []string, features []string) (map[string]map[string]float64, error) {
	out := make(map[string]map[string]float64, len(ids))
	if s.Client == nil || len(features) == 0 || len(ids) == 0 {
		return out, nil
	}

	rows := make([]map[string]interface{}, len(ids))
	for i, id := range ids {
		rows[i] = map[string]interface{}{entityKey: id}
	}
	resp, err := s.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   features,
		EntityRows: rows,
	})
	if err != nil {
		return nil, core.ErrFeatureServiceUnavailable
	}

	for i, vec := range resp.FeatureVectors {
		if i >= len(ids) {
			break
		}
		values := make(map[string]float64, len(vec.Values))
		for name, v := range vec.Values {
			if f, ok := v.(float64); ok {
				values[name] = f
			}
		}
		out[ids[i]] = values
	}
	return out, nil
}

var _ core.FeatureService = (*FeatureService)(nil)
