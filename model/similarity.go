package model

import "math"

// Cosine 计算两个稀疏特征向量的余弦相似度，取值 [-1,1]。
// 退化情形：任一零范数向量（例如完全没有偏好的用户）返回 0，而不是除零错误。
func Cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for k, va := range a {
		normA += va * va
		if vb, ok := b[k]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// BatchCosine 对整个目录做一次批量相似度计算：用户向量 vs 每个习惯向量。
// 返回 habitID -> 相似度；零范数用户向量得到全 0。
func BatchCosine(user map[string]float64, habits map[string]map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(habits))

	var normU float64
	for _, v := range user {
		normU += v * v
	}
	if normU == 0 {
		for id := range habits {
			out[id] = 0
		}
		return out
	}
	normU = math.Sqrt(normU)

	for id, hv := range habits {
		var dot, normH float64
		for k, v := range hv {
			normH += v * v
			if uv, ok := user[k]; ok {
				dot += uv * v
			}
		}
		if normH == 0 {
			out[id] = 0
			continue
		}
		out[id] = dot / (normU * math.Sqrt(normH))
	}
	return out
}
