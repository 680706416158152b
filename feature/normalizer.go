package feature

import "sort"

// NumericStats 是单个数值字段在参考语料上的统计量。
// 训练期拟合一次，之后在整个服务周期内只读复用，保证训练与推理的尺度一致。
type NumericStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Normalizer 持有各数值字段的 min-max 缩放参数与中位数（用于缺失值填补）。
type Normalizer struct {
	Fields map[string]NumericStats `json:"fields"`
}

// FitNormalizer 在参考语料上拟合缩放参数。同一份语料得到同一组参数（确定性）。
func FitNormalizer(samples map[string][]float64) *Normalizer {
	n := &Normalizer{Fields: make(map[string]NumericStats, len(samples))}
	for key, values := range samples {
		if len(values) == 0 {
			continue
		}
		sorted := make([]float64, len(values))
		copy(sorted, values)
		sort.Float64s(sorted)

		stats := NumericStats{Min: sorted[0], Max: sorted[len(sorted)-1]}
		mid := len(sorted) / 2
		if len(sorted)%2 == 0 {
			stats.Median = (sorted[mid-1] + sorted[mid]) / 2
		} else {
			stats.Median = sorted[mid]
		}
		n.Fields[key] = stats
	}
	return n
}

// Scale 将字段值 min-max 缩放到 [0,1]。
// 字段未拟合或取值域退化（min == max）时返回 0；越界值截断到 [0,1]。
func (n *Normalizer) Scale(key string, value float64) float64 {
	if n == nil {
		return 0
	}
	stats, ok := n.Fields[key]
	if !ok || stats.Max <= stats.Min {
		return 0
	}
	scaled := (value - stats.Min) / (stats.Max - stats.Min)
	if scaled < 0 {
		return 0
	}
	if scaled > 1 {
		return 1
	}
	return scaled
}

// Median 返回字段的参考中位数，用于缺失值填补；字段未拟合时返回 0。
func (n *Normalizer) Median(key string) float64 {
	if n == nil {
		return 0
	}
	return n.Fields[key].Median
}

// Has 判断字段是否已拟合。
func (n *Normalizer) Has(key string) bool {
	if n == nil {
		return false
	}
	_, ok := n.Fields[key]
	return ok
}
