package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/habitkit/core"
	"github.com/rushteam/habitkit/model"
	"github.com/rushteam/habitkit/pipeline"
	"github.com/rushteam/habitkit/pkg/utils"
)

// Diversity 是多样性重排 Node：对 Top-N 窗口内的候选做两两相似度检查，
// 超过阈值的候选对中得分较低者被降位，由窗口外"类别尚未出现"的最高分候选顶替。
//
// 迭代直到窗口内没有超阈值的候选对，或者没有可用的顶替候选为止；
// 每次顶替都会消耗一个窗口外候选，候选池单调缩小，循环必然终止。
//
// 例外：目录中不同类别的数量少于窗口大小时，可能无法完全消除相似对，
// 此时保留现状返回（多样性是尽力约束，不是硬保证）。
type Diversity struct {
	// TopN 多样性约束的作用窗口大小，默认 10
	TopN int

	// Threshold 两两相似度阈值，默认 0.8
	Threshold float64
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	topN := n.TopN
	if topN <= 0 {
		topN = 10
	}
	threshold := n.Threshold
	if threshold <= 0 {
		threshold = 0.8
	}
	if len(items) <= 1 {
		return items, nil
	}
	if topN > len(items) {
		topN = len(items)
	}

	window := append([]*core.Item{}, items[:topN]...)
	rest := append([]*core.Item{}, items[topN:]...)
	var demoted []*core.Item

	for {
		i, j := findConflict(window, threshold)
		if i < 0 {
			break
		}

		// 窗口中已出现的类别（不含将被降位的那个）
		represented := make(map[string]bool, len(window))
		for k, it := range window {
			if k == j {
				continue
			}
			represented[categoryOf(it)] = true
		}

		// rest 保持分数降序，取第一个类别未出现的候选即可
		replacement := -1
		for k, it := range rest {
			if cat := categoryOf(it); cat != "" && !represented[cat] {
				replacement = k
				break
			}
		}
		if replacement < 0 {
			break
		}

		loser := window[j]
		loser.PutLabel("diversity_demoted", utils.Label{Value: "true", Source: n.Name()})
		rest[replacement].PutLabel("diversity_promoted", utils.Label{Value: "true", Source: n.Name()})

		window[j] = rest[replacement]
		rest = append(rest[:replacement], rest[replacement+1:]...)
		demoted = append(demoted, loser)
	}

	// 降位候选回到尾部，与剩余候选一起按分数重排，保证输出顺序确定
	tail := append(demoted, rest...)
	sort.SliceStable(tail, func(a, b int) bool {
		if tail[a].Score != tail[b].Score {
			return tail[a].Score > tail[b].Score
		}
		return tail[a].ID < tail[b].ID
	})
	return append(window, tail...), nil
}

// findConflict 返回窗口内第一对相似度超阈值的候选下标（j 是得分较低的一方）。
// 没有冲突时返回 (-1, -1)。
func findConflict(window []*core.Item, threshold float64) (int, int) {
	for i := 0; i < len(window); i++ {
		for j := i + 1; j < len(window); j++ {
			if window[i] == nil || window[j] == nil {
				continue
			}
			if model.Cosine(window[i].Features, window[j].Features) > threshold {
				return i, j
			}
		}
	}
	return -1, -1
}

func categoryOf(it *core.Item) string {
	if it == nil || it.Meta == nil {
		return ""
	}
	cat, _ := it.Meta["category"].(string)
	return cat
}
