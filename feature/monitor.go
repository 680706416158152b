package feature

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Monitor 是特征监控接口：记录特征使用、缺失与错误，用于观测特征质量。
type Monitor interface {
	RecordUsage(ctx context.Context, featureName string, value float64)
	RecordMissing(ctx context.Context, featureName string, entityID string)
	RecordError(ctx context.Context, featureName string, err error)
}

// Stats 是单个特征的累计统计。
type Stats struct {
	FeatureName  string
	UsageCount   int64
	MissingCount int64
	ErrorCount   int64
	Sum          float64
	Min          float64
	Max          float64
}

// MemoryMonitor 是内存特征监控实现，用于测试/开发/原型。
type MemoryMonitor struct {
	mu    sync.RWMutex
	stats map[string]*Stats
}

func NewMemoryMonitor() *MemoryMonitor {
	return &MemoryMonitor{stats: make(map[string]*Stats)}
}

func (m *MemoryMonitor) get(name string) *Stats {
	s, ok := m.stats[name]
	if !ok {
		s = &Stats{FeatureName: name}
		m.stats[name] = s
	}
	return s
}

func (m *MemoryMonitor) RecordUsage(_ context.Context, featureName string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(featureName)
	if s.UsageCount == 0 || value < s.Min {
		s.Min = value
	}
	if s.UsageCount == 0 || value > s.Max {
		s.Max = value
	}
	s.UsageCount++
	s.Sum += value
}

func (m *MemoryMonitor) RecordMissing(_ context.Context, featureName string, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(featureName).MissingCount++
}

func (m *MemoryMonitor) RecordError(_ context.Context, featureName string, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(featureName).ErrorCount++
}

// GetStats 返回某特征的统计副本。
func (m *MemoryMonitor) GetStats(featureName string) (Stats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stats[featureName]
	if !ok {
		return Stats{}, false
	}
	return *s, true
}

// PrometheusMonitor 是基于 Prometheus 的特征监控实现，生产环境使用。
// 指标按特征名打 label，暴露使用次数、缺失次数、错误次数与取值分布。
type PrometheusMonitor struct {
	usage   *prometheus.CounterVec
	missing *prometheus.CounterVec
	errors  *prometheus.CounterVec
	values  *prometheus.HistogramVec
}

// NewPrometheusMonitor 创建并注册 Prometheus 监控；registerer 为 nil 时使用默认注册表。
func NewPrometheusMonitor(registerer prometheus.Registerer) *PrometheusMonitor {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &PrometheusMonitor{
		usage: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "habitkit",
			Subsystem: "feature",
			Name:      "usage_total",
			Help:      "Feature usage count by feature name.",
		}, []string{"feature"}),
		missing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "habitkit",
			Subsystem: "feature",
			Name:      "missing_total",
			Help:      "Feature missing (imputed) count by feature name.",
		}, []string{"feature"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "habitkit",
			Subsystem: "feature",
			Name:      "errors_total",
			Help:      "Feature extraction error count by feature name.",
		}, []string{"feature"}),
		values: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "habitkit",
			Subsystem: "feature",
			Name:      "value",
			Help:      "Feature value distribution by feature name.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}, []string{"feature"}),
	}
	registerer.MustRegister(m.usage, m.missing, m.errors, m.values)
	return m
}

func (m *PrometheusMonitor) RecordUsage(_ context.Context, featureName string, value float64) {
	m.usage.WithLabelValues(featureName).Inc()
	m.values.WithLabelValues(featureName).Observe(value)
}

func (m *PrometheusMonitor) RecordMissing(_ context.Context, featureName string, _ string) {
	m.missing.WithLabelValues(featureName).Inc()
}

func (m *PrometheusMonitor) RecordError(_ context.Context, featureName string, _ error) {
	m.errors.WithLabelValues(featureName).Inc()
}
