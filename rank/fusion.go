package rank

import (
	"context"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/habitkit/core"
	"github.com/rushteam/habitkit/feature"
	"github.com/rushteam/habitkit/model"
	"github.com/rushteam/habitkit/pipeline"
	"github.com/rushteam/habitkit/pkg/utils"
)

// Fusion 是三路信号融合排序 Node：
//
//	综合得分 = (w_c·内容相似 + w_cf·协同信号 + w_s·成功率) × 年龄契合乘数 × 偏好契合乘数
//
// 三路信号在加权前各自归一到 [0,1]（归一化契约由本节点持有）：
//   - 内容相似：余弦 [-1,1] 线性映射为 (s+1)/2
//   - 协同信号：在候选集内做 min-max 归一；候选间区分不开时取中性分 0.5
//   - 成功率：本身就是 [0,1] 概率
//
// 模型缺位（协同模型未训练、用户不在训练矩阵中、成功率模型未训练）时，
// 该路信号的权重强制归零，只用剩余可用信号打分；剩余权重不重归一。
// 中性分顶替是不行的：常数项会和后置的年龄/偏好乘数相互作用，改变相对排序。
//
// 降级行为全部透出到 Label，不吞掉：
//   - collaborative_disabled：冷启动权重为 0，或协同信号对该用户不可用
//   - uncalibrated：成功率模型回退为未校准输出
//   - degraded：成功率模型整体缺位，该路权重归零
//
// 确定性：同分候选按习惯 ID 升序排列。
type Fusion struct {
	Encoder *feature.Encoder
	MF      *model.MF
	Success *model.SuccessModel
	Policy  *WeightPolicy

	// Features 可选：外部特征服务，用户侧统计特征合并进用户向量
	Features core.FeatureService
}

func (n *Fusion) Name() string        { return "rank.fusion" }
func (n *Fusion) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *Fusion) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	if n.Encoder == nil || rctx == nil || rctx.User == nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "fusion: encoder and user profile are required")
	}

	userVec, err := n.Encoder.EncodeUser(ctx, rctx.User)
	if err != nil {
		return nil, err
	}
	// 用户侧扩展特征走同一前缀约定，保证与训练期的成功率特征名一致；
	// 特征服务不可用时跳过合并，不拖垮请求
	if n.Features != nil {
		if ext, err := n.Features.GetUserFeatures(ctx, rctx.UserID); err == nil {
			feature.MergeExternal(userVec, feature.ExternalUserPrefix, ext)
		} else {
			rctx.PutLabel("features_unavailable", utils.Label{Value: "true", Source: n.Name()})
		}
	}

	policy := n.Policy
	if policy == nil {
		policy = DefaultWeightPolicy()
	}
	weights := policy.For(rctx.User.InteractionCount())

	// 缺位信号不参与加权：权重归零而不是用中性分顶替，
	// 否则常数项经过乘数放大后会改变相对排序
	if n.MF.UserVector(rctx.UserID) == nil {
		weights.Collaborative = 0
	}
	if n.Success == nil {
		weights.Success = 0
	}
	if weights.Collaborative == 0 {
		rctx.PutLabel("collaborative_disabled", utils.Label{Value: "true", Source: n.Name()})
	}

	// 三路信号并发计算，各自写独立的结果表，汇合后再融合
	content := make(map[string]float64, len(items))
	collab := make(map[string]float64, len(items))
	success := make(map[string]model.Envelope, len(items))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		habitVecs := make(map[string]map[string]float64, len(items))
		for _, it := range items {
			if it != nil {
				habitVecs[it.ID] = it.Features
			}
		}
		for id, s := range model.BatchCosine(userVec, habitVecs) {
			content[id] = (s + 1) / 2
		}
		return nil
	})
	eg.Go(func() error {
		n.collabScores(rctx.UserID, items, collab)
		return nil
	})
	eg.Go(func() error {
		return n.successScores(egCtx, rctx.User, userVec, items, success)
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		env := success[it.ID]
		fused := weights.Content*content[it.ID] +
			weights.Collaborative*collab[it.ID] +
			weights.Success*env.Probability

		minAge, _ := it.Meta["min_age"].(int)
		maxAge, _ := it.Meta["max_age"].(int)
		activityType, _ := it.Meta["activity_type"].(string)
		category, _ := it.Meta["category"].(string)

		ageFit := AgeFitMultiplier(rctx.User.Age, minAge, maxAge)
		prefFit := PreferenceMultiplier(rctx.User, activityType, category)
		it.Score = fused * ageFit * prefFit

		it.PutLabel("signal_content", floatLabel(content[it.ID], n.Name()))
		it.PutLabel("signal_collaborative", floatLabel(collab[it.ID], n.Name()))
		it.PutLabel("signal_success", floatLabel(env.Probability, n.Name()))
		it.PutLabel("age_fit", floatLabel(ageFit, n.Name()))
		it.PutLabel("preference_fit", floatLabel(prefFit, n.Name()))
		if n.Success == nil {
			it.PutLabel("degraded", utils.Label{Value: "true", Source: n.Name()})
		} else if !env.Calibrated {
			it.PutLabel("uncalibrated", utils.Label{Value: "true", Source: n.Name()})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// collabScores 计算候选集内 min-max 归一后的协同信号。
// 模型缺位时填 0.5 只为 Label 观测输出，此时该路权重已归零，不进融合。
func (n *Fusion) collabScores(userID string, items []*core.Item, out map[string]float64) {
	if n.MF == nil {
		for _, it := range items {
			if it != nil {
				out[it.ID] = 0.5
			}
		}
		return
	}

	raw := make(map[string]float64, len(items))
	lo, hi := 0.0, 0.0
	first := true
	for _, it := range items {
		if it == nil {
			continue
		}
		s := n.MF.Score(userID, it.ID)
		raw[it.ID] = s
		if first {
			lo, hi = s, s
			first = false
			continue
		}
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	span := hi - lo
	for id, s := range raw {
		if span == 0 {
			out[id] = 0.5
			continue
		}
		out[id] = (s - lo) / span
	}
}

// successScores 计算每个候选的成功率信封。
// 模型缺位时填 0.5 只为 Label 观测输出，此时该路权重已归零，不进融合。
func (n *Fusion) successScores(ctx context.Context, user *core.UserProfile, userVec map[string]float64, items []*core.Item, out map[string]model.Envelope) error {
	for _, it := range items {
		if it == nil {
			continue
		}
		if n.Success == nil {
			out[it.ID] = model.Envelope{Probability: 0.5, Calibrated: false}
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		cross := crossFromMeta(n.Encoder, user, it)
		pair := feature.PairFeatures(userVec, it.Features, cross)
		out[it.ID] = n.Success.Predict(pair)
	}
	return nil
}

// crossFromMeta 基于候选 meta 重建习惯定义并生成交叉特征。
// 召回阶段已把定义字段放进 meta，这里不再回查目录。
func crossFromMeta(e *feature.Encoder, user *core.UserProfile, it *core.Item) map[string]float64 {
	h := &core.Habit{ID: it.ID}
	h.Category, _ = it.Meta["category"].(string)
	h.ActivityType, _ = it.Meta["activity_type"].(string)
	h.Minutes, _ = it.Meta["minutes"].(int)
	h.MinAge, _ = it.Meta["min_age"].(int)
	h.MaxAge, _ = it.Meta["max_age"].(int)
	if s, ok := it.Meta["preferred_time"].(string); ok {
		h.PreferredTime = core.TimeOfDay(s)
	}
	return e.CrossFeatures(user, h)
}

func floatLabel(v float64, source string) utils.Label {
	return utils.Label{Value: strconv.FormatFloat(v, 'f', 6, 64), Source: source}
}
