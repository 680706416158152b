package model

import (
	"math"
	"sort"

	"github.com/rushteam/habitkit/core"
)

// Sample 是一条带标注的训练样本：特征 + 是否成功养成（采纳成功）。
type Sample struct {
	Features map[string]float64
	Label    bool
}

// Stump 是单层决策树（决策树桩）：feature <= threshold 走 Left，否则走 Right。
// Left/Right 是已乘过学习率的叶子增量。
type Stump struct {
	Feature   string  `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      float64 `json:"left"`
	Right     float64 `json:"right"`
}

// GBDT 是梯度提升树桩分类器（logistic 损失），用于成功率预测的原始模型。
//
// 预测原理：
//  1. 累加：z = Bias + Σ stump_i(x)
//  2. z 是 log-odds；sigmoid(z) 即未校准概率
//
// 原始输出不保证是校准概率，暴露给融合层之前必须经过 Platt 校准（见 calibration.go）。
type GBDT struct {
	Bias     float64  `json:"bias"`
	Features []string `json:"features"` // 训练时见过的特征名，升序
	Stumps   []Stump  `json:"stumps"`
}

// GBDTOptions 是训练超参数。
type GBDTOptions struct {
	Rounds    int     // 提升轮数，默认 50
	Shrinkage float64 // 学习率，默认 0.1
	Reg       float64 // 叶子正则项，默认 1.0
	MinSplit  int     // 切分两侧各自的最小样本数，默认 2
}

func (o *GBDTOptions) withDefaults() GBDTOptions {
	opts := GBDTOptions{Rounds: 50, Shrinkage: 0.1, Reg: 1.0, MinSplit: 2}
	if o == nil {
		return opts
	}
	if o.Rounds > 0 {
		opts.Rounds = o.Rounds
	}
	if o.Shrinkage > 0 {
		opts.Shrinkage = o.Shrinkage
	}
	if o.Reg > 0 {
		opts.Reg = o.Reg
	}
	if o.MinSplit > 0 {
		opts.MinSplit = o.MinSplit
	}
	return opts
}

// TrainGBDT 训练梯度提升树桩分类器。
// 要求两个类别都有样本；否则返回 INSUFFICIENT_DATA。
// 确定性：特征按名字升序遍历，阈值按取值升序枚举，同分取先出现的切分。
func TrainGBDT(samples []Sample, o *GBDTOptions) (*GBDT, error) {
	pos, neg := 0, 0
	for _, s := range samples {
		if s.Label {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInsufficientData, "gbdt: need samples from both classes")
	}
	opts := o.withDefaults()

	featureSet := make(map[string]bool)
	for _, s := range samples {
		for k := range s.Features {
			featureSet[k] = true
		}
	}
	features := make([]string, 0, len(featureSet))
	for k := range featureSet {
		features = append(features, k)
	}
	sort.Strings(features)

	m := &GBDT{
		Bias:     math.Log(float64(pos) / float64(neg)),
		Features: features,
	}

	// 当前累计打分（log-odds）
	scores := make([]float64, len(samples))
	for i := range scores {
		scores[i] = m.Bias
	}

	grad := make([]float64, len(samples))
	hess := make([]float64, len(samples))

	for round := 0; round < opts.Rounds; round++ {
		for i, s := range samples {
			p := sigmoid(scores[i])
			y := 0.0
			if s.Label {
				y = 1.0
			}
			grad[i] = y - p
			hess[i] = p * (1 - p)
		}

		best, ok := bestStump(samples, features, grad, hess, opts)
		if !ok {
			break // 没有可用切分，提前停止
		}
		m.Stumps = append(m.Stumps, best)
		for i, s := range samples {
			scores[i] += best.apply(s.Features)
		}
	}
	return m, nil
}

func (m *GBDT) Name() string { return "gbdt" }

var _ Classifier = (*GBDT)(nil)

// PredictRaw 返回原始打分（log-odds）。未校准，不得直接当概率使用。
func (m *GBDT) PredictRaw(features map[string]float64) float64 {
	score := m.Bias
	for _, st := range m.Stumps {
		score += st.apply(features)
	}
	return score
}

func (st *Stump) apply(features map[string]float64) float64 {
	if features[st.Feature] <= st.Threshold {
		return st.Left
	}
	return st.Right
}

// bestStump 在全部特征上枚举阈值，选择增益最大的切分，叶子值取 Newton 步。
func bestStump(samples []Sample, features []string, grad, hess []float64, opts GBDTOptions) (Stump, bool) {
	var best Stump
	bestGain := math.Inf(-1)
	found := false

	var sumG, sumH float64
	for i := range grad {
		sumG += grad[i]
		sumH += hess[i]
	}

	type valueIndex struct {
		value float64
		index int
	}

	for _, f := range features {
		ordered := make([]valueIndex, len(samples))
		for i, s := range samples {
			ordered[i] = valueIndex{value: s.Features[f], index: i}
		}
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].value < ordered[j].value })

		var leftG, leftH float64
		leftN := 0
		for pos := 0; pos < len(ordered)-1; pos++ {
			leftG += grad[ordered[pos].index]
			leftH += hess[ordered[pos].index]
			leftN++
			// 相同取值之间不能切分
			if ordered[pos].value == ordered[pos+1].value {
				continue
			}
			rightN := len(ordered) - leftN
			if leftN < opts.MinSplit || rightN < opts.MinSplit {
				continue
			}
			rightG := sumG - leftG
			rightH := sumH - leftH
			gain := leftG*leftG/(leftH+opts.Reg) + rightG*rightG/(rightH+opts.Reg) - sumG*sumG/(sumH+opts.Reg)
			if gain > bestGain {
				bestGain = gain
				best = Stump{
					Feature:   f,
					Threshold: (ordered[pos].value + ordered[pos+1].value) / 2,
					Left:      opts.Shrinkage * leftG / (leftH + opts.Reg),
					Right:     opts.Shrinkage * rightG / (rightH + opts.Reg),
				}
				found = true
			}
		}
	}
	return best, found
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
