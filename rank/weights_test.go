package rank

import (
	"math"
	"testing"
)

func TestWeightPolicyStep(t *testing.T) {
	p := DefaultWeightPolicy()
	tests := []struct {
		name  string
		count int
		want  Weights
	}{
		{"cold start", 0, Weights{Content: 0.7, Collaborative: 0.0, Success: 0.3}},
		{"just below first threshold", 4, Weights{Content: 0.7, Collaborative: 0.0, Success: 0.3}},
		{"mid band", 5, Weights{Content: 0.5, Collaborative: 0.3, Success: 0.2}},
		{"mid band upper", 19, Weights{Content: 0.5, Collaborative: 0.3, Success: 0.2}},
		{"active user", 20, Weights{Content: 0.3, Collaborative: 0.5, Success: 0.2}},
		{"heavy user", 500, Weights{Content: 0.3, Collaborative: 0.5, Success: 0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.For(tt.count); got != tt.want {
				t.Errorf("For(%d) = %+v, want %+v", tt.count, got, tt.want)
			}
		})
	}
}

func TestWeightPolicySmooth(t *testing.T) {
	p := DefaultWeightPolicy()
	p.Smooth = true

	// 首档阈值以下不插值：冷启动协同权重必须严格为 0
	for _, count := range []int{0, 1, 4} {
		if got := p.For(count); got.Collaborative != 0 {
			t.Fatalf("For(%d).Collaborative = %v, want exactly 0", count, got.Collaborative)
		}
	}

	// 第二档起点精确等于该档权重
	if got := p.For(5); got != (Weights{Content: 0.5, Collaborative: 0.3, Success: 0.2}) {
		t.Errorf("For(5) = %+v", got)
	}

	// 档位中间取插值；权重和保持为 1
	got := p.For(12)
	if got.Collaborative <= 0.3 || got.Collaborative >= 0.5 {
		t.Errorf("For(12).Collaborative = %v, want in (0.3, 0.5)", got.Collaborative)
	}
	sum := got.Content + got.Collaborative + got.Success
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("interpolated weights sum = %v, want 1", sum)
	}

	// 末档及以上取末档权重
	if got := p.For(20); got != (Weights{Content: 0.3, Collaborative: 0.5, Success: 0.2}) {
		t.Errorf("For(20) = %+v", got)
	}
}

func TestWeightPolicyCustomBands(t *testing.T) {
	p := &WeightPolicy{Bands: []Band{
		{MinInteractions: 0, Weights: Weights{Content: 1}},
		{MinInteractions: 10, Weights: Weights{Collaborative: 1}},
	}}
	if got := p.For(9); got.Content != 1 {
		t.Errorf("For(9) = %+v, want content band", got)
	}
	if got := p.For(10); got.Collaborative != 1 {
		t.Errorf("For(10) = %+v, want collaborative band", got)
	}
}

func TestAgeFitMultiplier(t *testing.T) {
	tests := []struct {
		name   string
		age    int
		minAge int
		maxAge int
		want   float64
	}{
		{"in range", 30, 18, 65, 1.0},
		{"at lower bound", 18, 18, 65, 1.0},
		{"one below", 17, 18, 65, 0.9},
		{"five below", 13, 18, 65, 0.5},
		{"far below floors", 13, 60, 65, 0.1},
		{"one above", 66, 18, 65, 0.95},
		{"ten above", 75, 18, 65, 0.5},
		{"far above floors", 90, 18, 20, 0.1},
		{"open upper bound", 90, 18, 0, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AgeFitMultiplier(tt.age, tt.minAge, tt.maxAge)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AgeFitMultiplier(%d,%d,%d) = %v, want %v", tt.age, tt.minAge, tt.maxAge, got, tt.want)
			}
		})
	}
}
