package model

import (
	"github.com/rushteam/habitkit/core"
)

// Platt 是 Platt 缩放校准器：p = sigmoid(A*raw + B)。
// 约束 A >= 0，保证校准是原始打分的单调不减函数，即校准不改变候选间的相对排序。
type Platt struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// PlattOptions 是校准拟合的超参数。
type PlattOptions struct {
	Iterations int     // 梯度下降迭代轮数，默认 200
	LearnRate  float64 // 学习率，默认 0.1
	MinSamples int     // 拟合所需的最小留出样本数，默认 10
}

func (o *PlattOptions) withDefaults() PlattOptions {
	opts := PlattOptions{Iterations: 200, LearnRate: 0.1, MinSamples: 10}
	if o == nil {
		return opts
	}
	if o.Iterations > 0 {
		opts.Iterations = o.Iterations
	}
	if o.LearnRate > 0 {
		opts.LearnRate = o.LearnRate
	}
	if o.MinSamples > 0 {
		opts.MinSamples = o.MinSamples
	}
	return opts
}

// FitPlatt 在留出集的原始打分上拟合 Platt 缩放。
// 留出集必须与训练集不相交（由训练编排保证），否则校准会系统性偏乐观。
// 样本不足或只有单一类别时返回 INSUFFICIENT_DATA，调用方应回退为未校准输出。
func FitPlatt(raw []float64, labels []bool, o *PlattOptions) (*Platt, error) {
	opts := o.withDefaults()
	if len(raw) != len(labels) {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "platt: raw/labels length mismatch")
	}
	if len(raw) < opts.MinSamples {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInsufficientData, "platt: not enough holdout samples")
	}
	pos := 0
	for _, y := range labels {
		if y {
			pos++
		}
	}
	if pos == 0 || pos == len(labels) {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInsufficientData, "platt: holdout has a single class")
	}

	p := &Platt{A: 1, B: 0}
	n := float64(len(raw))
	for iter := 0; iter < opts.Iterations; iter++ {
		var gradA, gradB float64
		for i, f := range raw {
			y := 0.0
			if labels[i] {
				y = 1.0
			}
			diff := sigmoid(p.A*f+p.B) - y
			gradA += diff * f
			gradB += diff
		}
		p.A -= opts.LearnRate * gradA / n
		p.B -= opts.LearnRate * gradB / n
		// 单调性约束：斜率不允许为负
		if p.A < 0 {
			p.A = 0
		}
	}
	return p, nil
}

// Calibrate 把原始打分映射到校准概率。
func (p *Platt) Calibrate(raw float64) float64 {
	return sigmoid(p.A*raw + p.B)
}

// SuccessModel 把原始分类器和可选的校准器打包为成功率预测器。
// Platt 为 nil 表示校准缺位（留出样本不足），预测仍可用但信封会标记未校准。
type SuccessModel struct {
	Raw   *GBDT  `json:"raw"`
	Platt *Platt `json:"platt,omitempty"`
}

// Predict 返回成功率信封。
func (s *SuccessModel) Predict(features map[string]float64) Envelope {
	raw := s.Raw.PredictRaw(features)
	if s.Platt == nil {
		return Envelope{Probability: sigmoid(raw), Calibrated: false}
	}
	return Envelope{Probability: s.Platt.Calibrate(raw), Calibrated: true}
}
