package feature

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/habitkit/core"
)

// StoreProvider 是基于 core.Store 的特征提供者实现，采用适配器模式。
// 用于从外部画像系统物化到 KV 的扩展特征（全局采纳率、相似人群完成率等）。
type StoreProvider struct {
	store     core.Store
	keyPrefix KeyPrefix
}

// KeyPrefix 定义特征存储的 key 前缀。
type KeyPrefix struct {
	User  string // 用户特征前缀，例如 "user:features:"
	Habit string // 习惯特征前缀，例如 "habit:features:"
}

// NewStoreProvider 创建基于 Store 的特征提供者。
func NewStoreProvider(store core.Store, keyPrefix KeyPrefix) *StoreProvider {
	if keyPrefix.User == "" {
		keyPrefix.User = "user:features:"
	}
	if keyPrefix.Habit == "" {
		keyPrefix.Habit = "habit:features:"
	}
	return &StoreProvider{store: store, keyPrefix: keyPrefix}
}

func (p *StoreProvider) Name() string {
	return fmt.Sprintf("store.%s", p.store.Name())
}

func (p *StoreProvider) GetUserFeatures(ctx context.Context, userID string) (map[string]float64, error) {
	return p.getFeatures(ctx, p.keyPrefix.User+userID)
}

func (p *StoreProvider) GetHabitFeatures(ctx context.Context, habitID string) (map[string]float64, error) {
	return p.getFeatures(ctx, p.keyPrefix.Habit+habitID)
}

func (p *StoreProvider) BatchGetUserFeatures(ctx context.Context, userIDs []string) (map[string]map[string]float64, error) {
	return p.batchGetFeatures(ctx, p.keyPrefix.User, userIDs)
}

func (p *StoreProvider) BatchGetHabitFeatures(ctx context.Context, habitIDs []string) (map[string]map[string]float64, error) {
	return p.batchGetFeatures(ctx, p.keyPrefix.Habit, habitIDs)
}

func (p *StoreProvider) Close(_ context.Context) error {
	return nil
}

func (p *StoreProvider) getFeatures(ctx context.Context, key string) (map[string]float64, error) {
	data, err := p.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return map[string]float64{}, nil
		}
		return nil, err
	}
	var features map[string]float64
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, err
	}
	return features, nil
}

func (p *StoreProvider) batchGetFeatures(ctx context.Context, prefix string, ids []string) (map[string]map[string]float64, error) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, prefix+id)
	}
	values, err := p.store.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string]float64, len(ids))
	for i, id := range ids {
		data, ok := values[keys[i]]
		if !ok {
			out[id] = map[string]float64{}
			continue
		}
		var features map[string]float64
		if err := json.Unmarshal(data, &features); err != nil {
			return nil, err
		}
		out[id] = features
	}
	return out, nil
}

// CachedProvider 用 TTL 缓存装饰另一个 FeatureService，减少远程访问。
type CachedProvider struct {
	inner core.FeatureService
	ttl   time.Duration

	mu    sync.RWMutex
	users map[string]cacheEntry
	items map[string]cacheEntry
}

type cacheEntry struct {
	features map[string]float64
	expireAt time.Time
}

// NewCachedProvider 创建带 TTL 缓存的特征提供者装饰器。
func NewCachedProvider(inner core.FeatureService, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		ttl:   ttl,
		users: make(map[string]cacheEntry),
		items: make(map[string]cacheEntry),
	}
}

func (c *CachedProvider) Name() string {
	return "cached." + c.inner.Name()
}

func (c *CachedProvider) GetUserFeatures(ctx context.Context, userID string) (map[string]float64, error) {
	if features, ok := c.lookup(c.users, userID); ok {
		return features, nil
	}
	features, err := c.inner.GetUserFeatures(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.put(c.users, userID, features)
	return features, nil
}

func (c *CachedProvider) GetHabitFeatures(ctx context.Context, habitID string) (map[string]float64, error) {
	if features, ok := c.lookup(c.items, habitID); ok {
		return features, nil
	}
	features, err := c.inner.GetHabitFeatures(ctx, habitID)
	if err != nil {
		return nil, err
	}
	c.put(c.items, habitID, features)
	return features, nil
}

func (c *CachedProvider) BatchGetUserFeatures(ctx context.Context, userIDs []string) (map[string]map[string]float64, error) {
	return c.inner.BatchGetUserFeatures(ctx, userIDs)
}

func (c *CachedProvider) BatchGetHabitFeatures(ctx context.Context, habitIDs []string) (map[string]map[string]float64, error) {
	return c.inner.BatchGetHabitFeatures(ctx, habitIDs)
}

func (c *CachedProvider) Close(ctx context.Context) error {
	return c.inner.Close(ctx)
}

func (c *CachedProvider) lookup(m map[string]cacheEntry, id string) (map[string]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := m[id]
	if !ok || time.Now().After(e.expireAt) {
		return nil, false
	}
	return e.features, true
}

func (c *CachedProvider) put(m map[string]cacheEntry, id string, features map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m[id] = cacheEntry{features: features, expireAt: time.Now().Add(c.ttl)}
}
