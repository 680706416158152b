package rank

// Weights 是三路信号的融合权重：内容相似、协同信号、成功率预测。
type Weights struct {
	Content       float64 `json:"content" yaml:"content"`
	Collaborative float64 `json:"collaborative" yaml:"collaborative"`
	Success       float64 `json:"success" yaml:"success"`
}

// Band 是一个权重档位：交互数达到 MinInteractions 即进入该档。
type Band struct {
	MinInteractions int     `json:"min_interactions" yaml:"min_interactions"`
	Weights         Weights `json:"weights" yaml:"weights"`
}

// WeightPolicy 按用户历史交互数选择融合权重。
//
// 默认是阶梯函数：交互少的用户不信任协同信号（冷启动），交互多的用户
// 协同信号权重上调。档位阈值和权重组都是配置，不是硬编码常量。
//
// Smooth=true 时在相邻档位之间做线性插值，消除阈值处的分数跳变。
// 插值从第二个档位的起点开始：首档阈值以下永远精确取首档权重，
// 保证冷启动用户的协同权重严格为 0。
type WeightPolicy struct {
	Bands  []Band `json:"bands" yaml:"bands"`
	Smooth bool   `json:"smooth" yaml:"smooth"`
}

// DefaultWeightPolicy 返回默认的三档权重策略。
func DefaultWeightPolicy() *WeightPolicy {
	return &WeightPolicy{
		Bands: []Band{
			{MinInteractions: 0, Weights: Weights{Content: 0.7, Collaborative: 0.0, Success: 0.3}},
			{MinInteractions: 5, Weights: Weights{Content: 0.5, Collaborative: 0.3, Success: 0.2}},
			{MinInteractions: 20, Weights: Weights{Content: 0.3, Collaborative: 0.5, Success: 0.2}},
		},
	}
}

// For 返回交互数对应的权重组。
func (p *WeightPolicy) For(interactionCount int) Weights {
	bands := p.Bands
	if len(bands) == 0 {
		bands = DefaultWeightPolicy().Bands
	}

	// 定位当前档位
	cur := 0
	for i := range bands {
		if interactionCount >= bands[i].MinInteractions {
			cur = i
		}
	}

	if !p.Smooth || cur == 0 || cur == len(bands)-1 {
		return bands[cur].Weights
	}

	// 当前档与下一档之间线性插值
	lo, hi := bands[cur], bands[cur+1]
	span := float64(hi.MinInteractions - lo.MinInteractions)
	if span <= 0 {
		return lo.Weights
	}
	t := float64(interactionCount-lo.MinInteractions) / span
	return Weights{
		Content:       lerp(lo.Weights.Content, hi.Weights.Content, t),
		Collaborative: lerp(lo.Weights.Collaborative, hi.Weights.Collaborative, t),
		Success:       lerp(lo.Weights.Success, hi.Weights.Success, t),
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
