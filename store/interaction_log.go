package store

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/habitkit/core"
)

const (
	interactionKeyPrefix = "habitkit:interactions:"
	interactionUsersKey  = "habitkit:interactions:users"
)

// InteractionLog 是交互日志的存取适配器：
// 按用户一个有序集合，成员是交互记录的 JSON，score 是发生时间戳，
// 另维护一个用户索引集合供训练任务枚举全量日志。
//
// 日志是推荐系统唯一的行为事实来源：完成摘要、交互矩阵、训练样本都从它派生。
type InteractionLog struct {
	Store core.KeyValueStore
}

func NewInteractionLog(kv core.KeyValueStore) *InteractionLog {
	return &InteractionLog{Store: kv}
}

// Append 追加一条交互记录。
func (l *InteractionLog) Append(ctx context.Context, rec core.Interaction) error {
	if rec.UserID == "" || rec.HabitID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "interaction: user_id and habit_id are required")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	member, err := json.Marshal(rec)
	if err != nil {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInternalError, "interaction: marshal: "+err.Error())
	}
	score := float64(rec.Timestamp.UnixNano())
	if err := l.Store.ZAdd(ctx, interactionKeyPrefix+rec.UserID, score, string(member)); err != nil {
		return err
	}
	return l.Store.ZAdd(ctx, interactionUsersKey, score, rec.UserID)
}

// UserHistory 读取单个用户的交互记录，按时间从新到旧，最多 limit 条（<=0 表示全量）。
func (l *InteractionLog) UserHistory(ctx context.Context, userID string, limit int64) ([]core.Interaction, error) {
	stop := limit - 1
	if limit <= 0 {
		stop = -1
	}
	members, err := l.Store.ZRange(ctx, interactionKeyPrefix+userID, 0, stop)
	if err != nil {
		return nil, err
	}
	return decodeInteractions(members)
}

// Snapshot 读取全量交互日志，供训练任务构建交互矩阵和训练样本。
func (l *InteractionLog) Snapshot(ctx context.Context) ([]core.Interaction, error) {
	users, err := l.Store.ZRange(ctx, interactionUsersKey, 0, -1)
	if err != nil {
		return nil, err
	}
	var all []core.Interaction
	for _, userID := range users {
		records, err := l.UserHistory(ctx, userID, 0)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

func decodeInteractions(members []string) ([]core.Interaction, error) {
	out := make([]core.Interaction, 0, len(members))
	for _, m := range members {
		var rec core.Interaction
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			// 脏记录跳过，不让单条坏数据拖垮整个快照
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
