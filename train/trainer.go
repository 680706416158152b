package train

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/habitkit/artifact"
	"github.com/rushteam/habitkit/core"
	"github.com/rushteam/habitkit/feature"
	"github.com/rushteam/habitkit/model"
	"github.com/rushteam/habitkit/rank"
)

// Input 是一轮训练的输入快照：目录、画像集合、交互日志。
// 快照在训练开始时一次性取齐，训练过程中不再回源，保证一轮训练内数据一致。
type Input struct {
	Catalog      *core.Catalog
	Profiles     []*core.UserProfile
	Interactions []core.Interaction
}

// Trainer 是离线训练编排器，分阶段产出一个新的模型工件：
//
//	拟合编码器 → 构建交互矩阵 → (矩阵分解 ∥ 成功率模型) → Platt 校准 → 发布工件
//
// 失败策略：
//   - 编码器拟合失败：放弃本轮，保留旧工件继续服务
//   - 协同模型 / 成功率模型数据不足：跳过该信号，工件照常发布（在线侧自动降级）
//   - 校准样本不足：发布未校准的成功率模型，在线侧透出 uncalibrated
//
// 阶段之间检查 ctx，训练可以被取消；已发布的旧版本工件不受影响。
type Trainer struct {
	Registry *artifact.Registry
	Logger   *zap.Logger

	MFOpts    *model.MFOptions
	GBDTOpts  *model.GBDTOptions
	PlattOpts *model.PlattOptions
	Policy    *rank.WeightPolicy

	// Features 可选：外部特征服务，扩展特征并入成功率样本。
	// 在线侧必须装配同一个服务，训练与推理的特征名才对得上。
	Features core.FeatureService

	// HoldoutEvery 每隔多少条样本抽一条进校准留出集，默认 5（即 20%）
	HoldoutEvery int
}

// Run 执行一轮训练并发布新工件，返回发布的工件。
func (t *Trainer) Run(ctx context.Context, in Input) (*artifact.Bundle, error) {
	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	started := time.Now()
	logger.Info("training round started",
		zap.Int("catalog_size", in.Catalog.Len()),
		zap.Int("profiles", len(in.Profiles)),
		zap.Int("interactions", len(in.Interactions)),
	)

	profiles := t.withSummaries(in.Profiles, in.Interactions)

	// 阶段一：拟合编码参数。失败即放弃本轮。
	encoder, err := feature.FitEncoder(profiles, in.Catalog)
	if err != nil {
		logger.Error("encoder fit failed, keeping previous artifact", zap.Error(err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 阶段二：协同模型与成功率模型相互独立，并行训练。
	var (
		mf      *model.MF
		success *model.SuccessModel
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		matrix := model.BuildInteractionMatrix(in.Interactions)
		fitted, err := model.FitMF(matrix, t.MFOpts)
		if err != nil {
			if core.IsInsufficientData(err) {
				logger.Warn("collaborative model skipped", zap.Error(err))
				return nil
			}
			return err
		}
		mf = fitted
		return nil
	})
	eg.Go(func() error {
		fitted, err := t.fitSuccessModel(egCtx, logger, encoder, profiles, in)
		if err != nil {
			if core.IsInsufficientData(err) {
				logger.Warn("success model skipped", zap.Error(err))
				return nil
			}
			return err
		}
		success = fitted
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 阶段三：发布新工件并切换当前版本。
	bundle := &artifact.Bundle{
		CatalogVersion: in.Catalog.Version,
		CreatedAt:      time.Now(),
		Encoder:        encoder,
		MF:             mf,
		Success:        success,
		Policy:         t.Policy,
	}
	version, err := t.Registry.Publish(ctx, bundle)
	if err != nil {
		logger.Error("artifact publish failed", zap.Error(err))
		return nil, err
	}

	logger.Info("training round published",
		zap.String("version", version),
		zap.Bool("collaborative", mf != nil),
		zap.Bool("success_model", success != nil),
		zap.Bool("calibrated", success != nil && success.Platt != nil),
		zap.Duration("elapsed", time.Since(started)),
	)
	return bundle, nil
}

// fitSuccessModel 构建训练/留出样本并拟合 GBDT + Platt 校准。
// 留出集与训练集不相交：按确定性的间隔抽样切分，同一输入得到同一切分。
func (t *Trainer) fitSuccessModel(
	ctx context.Context,
	logger *zap.Logger,
	encoder *feature.Encoder,
	profiles []*core.UserProfile,
	in Input,
) (*model.SuccessModel, error) {
	samples, err := t.buildSamples(ctx, logger, encoder, profiles, in)
	if err != nil {
		return nil, err
	}

	holdoutEvery := t.HoldoutEvery
	if holdoutEvery <= 1 {
		holdoutEvery = 5
	}
	var trainSet, holdout []model.Sample
	for i, s := range samples {
		if (i+1)%holdoutEvery == 0 {
			holdout = append(holdout, s)
		} else {
			trainSet = append(trainSet, s)
		}
	}

	gbdt, err := model.TrainGBDT(trainSet, t.GBDTOpts)
	if err != nil {
		return nil, err
	}

	raw := make([]float64, len(holdout))
	labels := make([]bool, len(holdout))
	for i, s := range holdout {
		raw[i] = gbdt.PredictRaw(s.Features)
		labels[i] = s.Label
	}
	platt, err := model.FitPlatt(raw, labels, t.PlattOpts)
	if err != nil {
		if !core.IsInsufficientData(err) {
			return nil, err
		}
		// 校准缺位不是致命问题，发布未校准模型并如实声明
		logger.Warn("calibration skipped, publishing uncalibrated model", zap.Error(err))
		return &model.SuccessModel{Raw: gbdt}, nil
	}
	return &model.SuccessModel{Raw: gbdt, Platt: platt}, nil
}

// buildSamples 把交互日志转成带标注的训练样本：
// 特征 = 用户向量 + 习惯向量 + 交叉特征（与在线打分同一条拼接路径），标注 = 是否完成。
// 样本顺序确定（按用户、习惯、时间排序），切分才可复现。
func (t *Trainer) buildSamples(
	ctx context.Context,
	logger *zap.Logger,
	encoder *feature.Encoder,
	profiles []*core.UserProfile,
	in Input,
) ([]model.Sample, error) {
	byUser := make(map[string]*core.UserProfile, len(profiles))
	for _, p := range profiles {
		if p != nil {
			byUser[p.UserID] = p
		}
	}
	userVecs := make(map[string]map[string]float64, len(byUser))
	habitVecs := make(map[string]map[string]float64, in.Catalog.Len())
	extUsers, extHabits := t.fetchExternal(ctx, logger, byUser, in.Catalog)

	sorted := make([]core.Interaction, len(in.Interactions))
	copy(sorted, in.Interactions)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].UserID != sorted[j].UserID {
			return sorted[i].UserID < sorted[j].UserID
		}
		if sorted[i].HabitID != sorted[j].HabitID {
			return sorted[i].HabitID < sorted[j].HabitID
		}
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	samples := make([]model.Sample, 0, len(sorted))
	for _, rec := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		profile := byUser[rec.UserID]
		habit := in.Catalog.Get(rec.HabitID)
		if profile == nil || habit == nil {
			continue
		}

		uv, ok := userVecs[rec.UserID]
		if !ok {
			encoded, err := encoder.EncodeUser(ctx, profile)
			if err != nil {
				// 个别画像非法不拖垮整轮训练，跳过该用户的样本
				userVecs[rec.UserID] = nil
				continue
			}
			feature.MergeExternal(encoded, feature.ExternalUserPrefix, extUsers[rec.UserID])
			uv = encoded
			userVecs[rec.UserID] = uv
		}
		if uv == nil {
			continue
		}
		hv, ok := habitVecs[rec.HabitID]
		if !ok {
			encoded, err := encoder.EncodeHabit(ctx, habit)
			if err != nil {
				return nil, err
			}
			feature.MergeExternal(encoded, feature.ExternalHabitPrefix, extHabits[rec.HabitID])
			hv = encoded
			habitVecs[rec.HabitID] = hv
		}

		samples = append(samples, model.Sample{
			Features: feature.PairFeatures(uv, hv, encoder.CrossFeatures(profile, habit)),
			Label:    rec.Completed,
		})
	}
	return samples, nil
}

// fetchExternal 一次性批量拉取外部扩展特征。服务不可用不拖垮整轮训练，
// 打日志后退化为纯编码器特征。
func (t *Trainer) fetchExternal(
	ctx context.Context,
	logger *zap.Logger,
	byUser map[string]*core.UserProfile,
	catalog *core.Catalog,
) (map[string]map[string]float64, map[string]map[string]float64) {
	if t.Features == nil {
		return nil, nil
	}

	userIDs := make([]string, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)
	habitIDs := make([]string, 0, catalog.Len())
	for _, h := range catalog.All() {
		habitIDs = append(habitIDs, h.ID)
	}

	users, err := t.Features.BatchGetUserFeatures(ctx, userIDs)
	if err != nil {
		logger.Warn("external user features unavailable, training without them", zap.Error(err))
		users = nil
	}
	habits, err := t.Features.BatchGetHabitFeatures(ctx, habitIDs)
	if err != nil {
		logger.Warn("external habit features unavailable, training without them", zap.Error(err))
		habits = nil
	}
	return users, habits
}

// withSummaries 为缺少完成历史摘要的画像补上由日志派生的摘要。
func (t *Trainer) withSummaries(profiles []*core.UserProfile, records []core.Interaction) []*core.UserProfile {
	byUser := make(map[string][]core.Interaction)
	for _, r := range records {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	now := time.Now()
	out := make([]*core.UserProfile, 0, len(profiles))
	for _, p := range profiles {
		if p == nil {
			continue
		}
		if p.Summary == nil {
			enriched := *p
			enriched.Summary = core.BuildSummary(byUser[p.UserID], now)
			out = append(out, &enriched)
			continue
		}
		out = append(out, p)
	}
	return out
}
