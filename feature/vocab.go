package feature

import "sort"

// Vocabulary 是带版本号的固定词表，用于类别/多值字段的 one-hot / multi-hot 编码。
// 训练期固定，推理期只读；推理时遇到词表之外的类别映射为全零子向量，从不报错。
type Vocabulary struct {
	Version string   `json:"version"`
	Terms   []string `json:"terms"` // 升序排列，保证维度顺序稳定
}

// NewVocabulary 构建词表。词项去重并按字典序排序。
func NewVocabulary(version string, terms []string) *Vocabulary {
	seen := make(map[string]bool, len(terms))
	uniq := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		uniq = append(uniq, t)
	}
	sort.Strings(uniq)
	return &Vocabulary{Version: version, Terms: uniq}
}

// Has 判断词项是否在词表内（Terms 有序，二分查找）。
func (v *Vocabulary) Has(term string) bool {
	if v == nil {
		return false
	}
	i := sort.SearchStrings(v.Terms, term)
	return i < len(v.Terms) && v.Terms[i] == term
}

// EncodeSet 将一个集合 multi-hot 编码为 prefix_term -> 1.0。
// 集合为 nil 时视为空集（哨兵语义），词表外的项被静默忽略。
// 稀疏表示：未命中的维度值为 0，直接省略。
func (v *Vocabulary) EncodeSet(prefix string, values map[string]bool) map[string]float64 {
	out := make(map[string]float64)
	if v == nil {
		return out
	}
	for term, on := range values {
		if !on || !v.Has(term) {
			continue
		}
		out[prefix+term] = 1.0
	}
	return out
}

// EncodeOne 将单值类别 one-hot 编码；空值或词表外的值得到全零子向量。
func (v *Vocabulary) EncodeOne(prefix, value string) map[string]float64 {
	out := make(map[string]float64)
	if v == nil || value == "" || !v.Has(value) {
		return out
	}
	out[prefix+value] = 1.0
	return out
}
