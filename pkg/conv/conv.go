package conv

// 配置与类型转换辅助：Node 配置统一以 map[string]interface{} 传入（YAML/JSON 解析结果），
// 这里集中处理取值与宽松的数值转换。

// ConfigGet 从配置 map 中取值，类型不匹配或缺失时返回默认值。
func ConfigGet[T any](cfg map[string]interface{}, key string, def T) T {
	if cfg == nil {
		return def
	}
	if v, ok := cfg[key]; ok {
		if tv, ok := v.(T); ok {
			return tv
		}
	}
	return def
}

// ConfigGetInt64 从配置 map 中取整数，兼容 YAML/JSON 解析出的 int/int64/float64。
func ConfigGetInt64(cfg map[string]interface{}, key string, def int64) int64 {
	if cfg == nil {
		return def
	}
	switch v := cfg[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return def
}

// ConfigGetFloat64 从配置 map 中取浮点数，兼容 int/int64/float64。
func ConfigGetFloat64(cfg map[string]interface{}, key string, def float64) float64 {
	if cfg == nil {
		return def
	}
	switch v := cfg[key].(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	}
	return def
}

// MapToFloat64 将 map[string]interface{} 转换为 map[string]float64，忽略非数值。
func MapToFloat64(in map[string]interface{}) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		switch fv := v.(type) {
		case float64:
			out[k] = fv
		case int:
			out[k] = float64(fv)
		case int64:
			out[k] = float64(fv)
		}
	}
	return out
}

// SliceAnyToString 将 []interface{} 转换为 []string，忽略非字符串元素。
func SliceAnyToString(v interface{}) []string {
	in, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, e := range in {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
