package model

import (
	"math/rand"

	"github.com/rushteam/habitkit/core"
)

// MF 是矩阵分解（Matrix Factorization）协同信号模型。
//
// 核心思想：把用户-习惯交互矩阵分解为用户隐向量和习惯隐向量，
// 预测分数 = 用户隐向量 · 习惯隐向量。
//
// 工程特征：
//   - 离线全量重训（批任务），在线只做查表 + 点积
//   - 冷启动：训练矩阵中不存在的用户/习惯返回中性分 0，由融合层负责降权
//   - 确定性：固定随机种子 + 固定单元格遍历顺序，同一输入得到同一模型
type MF struct {
	K            int                  `json:"k"`
	UserFactors  map[string][]float64 `json:"user_factors"`
	HabitFactors map[string][]float64 `json:"habit_factors"`
}

// MFOptions 是矩阵分解的训练超参数。
type MFOptions struct {
	K         int     // 隐向量维度，约束在 [10,50]，默认 20
	Epochs    int     // 训练轮数，默认 30
	LearnRate float64 // 学习率，默认 0.02
	Reg       float64 // L2 正则，默认 0.05
	Seed      int64   // 随机种子，默认 42
}

func (o *MFOptions) withDefaults() MFOptions {
	opts := MFOptions{K: 20, Epochs: 30, LearnRate: 0.02, Reg: 0.05, Seed: 42}
	if o == nil {
		return opts
	}
	if o.K != 0 {
		opts.K = o.K
	}
	if opts.K < 10 {
		opts.K = 10
	}
	if opts.K > 50 {
		opts.K = 50
	}
	if o.Epochs > 0 {
		opts.Epochs = o.Epochs
	}
	if o.LearnRate > 0 {
		opts.LearnRate = o.LearnRate
	}
	if o.Reg > 0 {
		opts.Reg = o.Reg
	}
	if o.Seed != 0 {
		opts.Seed = o.Seed
	}
	return opts
}

// FitMF 在交互矩阵上做固定秩的低秩分解（SGD）。
// 矩阵为空时返回 INSUFFICIENT_DATA：批任务应放弃本轮产出，保留旧工件。
func FitMF(matrix *InteractionMatrix, o *MFOptions) (*MF, error) {
	if matrix == nil || matrix.NonZero() == 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInsufficientData, "mf: empty interaction matrix")
	}
	opts := o.withDefaults()
	rng := rand.New(rand.NewSource(opts.Seed))

	m := &MF{
		K:            opts.K,
		UserFactors:  make(map[string][]float64, len(matrix.Users())),
		HabitFactors: make(map[string][]float64, len(matrix.Habits())),
	}
	// 初始化顺序固定（用户/习惯均按 ID 升序），保证可复现
	for _, userID := range matrix.Users() {
		m.UserFactors[userID] = randomFactors(rng, opts.K)
	}
	for _, habitID := range matrix.Habits() {
		m.HabitFactors[habitID] = randomFactors(rng, opts.K)
	}

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for _, userID := range matrix.Users() {
			uf := m.UserFactors[userID]
			for _, habitID := range matrix.Habits() {
				strength, ok := matrix.Strength(userID, habitID)
				if !ok {
					continue
				}
				hf := m.HabitFactors[habitID]
				err := strength - dot(uf, hf)
				for i := 0; i < opts.K; i++ {
					du := opts.LearnRate * (err*hf[i] - opts.Reg*uf[i])
					dh := opts.LearnRate * (err*uf[i] - opts.Reg*hf[i])
					uf[i] += du
					hf[i] += dh
				}
			}
		}
	}
	return m, nil
}

// UserVector 返回用户隐向量；冷启动用户返回 nil。
func (m *MF) UserVector(userID string) []float64 {
	if m == nil {
		return nil
	}
	return m.UserFactors[userID]
}

// HabitVector 返回习惯隐向量；冷启动习惯返回 nil。
func (m *MF) HabitVector(habitID string) []float64 {
	if m == nil {
		return nil
	}
	return m.HabitFactors[habitID]
}

// Score 返回协同信号分数。用户或习惯不在训练矩阵中时返回中性分 0（冷启动回退），
// 不报错；是否信任该信号由融合层按交互数决定。
func (m *MF) Score(userID, habitID string) float64 {
	uf := m.UserVector(userID)
	hf := m.HabitVector(habitID)
	if uf == nil || hf == nil {
		return 0
	}
	return dot(uf, hf)
}

func randomFactors(rng *rand.Rand, k int) []float64 {
	f := make([]float64, k)
	for i := range f {
		f[i] = (rng.Float64() - 0.5) * 0.1
	}
	return f
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
