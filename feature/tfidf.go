package feature

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// TFIDF 是词重要度文本向量化器。
// 在参考文本语料上拟合一次 IDF 表，推理期只读；词表之外的 token 被静默丢弃，
// 空文本向量化为零向量（空 map）。
type TFIDF struct {
	IDF map[string]float64 `json:"idf"`
}

// Tokenize 分词：小写化后按非字母数字切分。俄文等非 ASCII 字母同样保留。
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// FitTFIDF 在参考语料上拟合 IDF 表。
// idf = ln((1+N)/(1+df)) + 1（平滑，避免除零），与语料顺序无关。
func FitTFIDF(docs []string) *TFIDF {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, tok := range Tokenize(doc) {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			df[tok]++
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for tok, count := range df {
		idf[tok] = math.Log((1+n)/(1+float64(count))) + 1
	}
	return &TFIDF{IDF: idf}
}

// Vectorize 将文本向量化为 prefix_token -> tf*idf，并做 L2 归一化。
// 空文本或全部 OOV 时返回空 map（零向量）。
func (t *TFIDF) Vectorize(prefix, text string) map[string]float64 {
	out := make(map[string]float64)
	if t == nil || text == "" {
		return out
	}

	tf := make(map[string]int)
	for _, tok := range Tokenize(text) {
		if _, ok := t.IDF[tok]; !ok {
			continue // OOV 静默丢弃
		}
		tf[tok]++
	}
	if len(tf) == 0 {
		return out
	}

	var norm float64
	keys := make([]string, 0, len(tf))
	for tok := range tf {
		keys = append(keys, tok)
	}
	sort.Strings(keys)
	for _, tok := range keys {
		w := float64(tf[tok]) * t.IDF[tok]
		out[prefix+tok] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for k := range out {
			out[k] /= norm
		}
	}
	return out
}
