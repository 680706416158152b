package explain

import (
	"context"
	"strings"
	"testing"

	"github.com/rushteam/habitkit/core"
	"github.com/rushteam/habitkit/pkg/utils"
)

func explainFixture() (*core.RecommendContext, *core.Item) {
	rctx := &core.RecommendContext{
		UserID: "u1",
		User: &core.UserProfile{
			UserID:              "u1",
			Age:                 30,
			ActivityPreferences: map[string]bool{"Physical": true},
			ImprovementAreas:    map[string]bool{"Health": true},
		},
	}
	it := core.NewItem("h1")
	it.Meta["category"] = "Health"
	it.Meta["activity_type"] = "Physical"
	it.PutLabel("signal_success", utils.Label{Value: "0.750000", Source: "rank.fusion"})
	it.PutLabel("age_fit", utils.Label{Value: "1.000000", Source: "rank.fusion"})
	return rctx, it
}

func TestExtractFactors(t *testing.T) {
	rctx, it := explainFixture()
	factors := ExtractFactors(rctx, it)
	if len(factors) != 4 {
		t.Fatalf("ExtractFactors() len = %d, want 4: %+v", len(factors), factors)
	}
	// 按重要度降序：类别 > 偏好 > 成功率 > 年龄
	wantOrder := []core.FactorType{
		core.FactorCategoryMatch,
		core.FactorPreferenceMatch,
		core.FactorSuccessProb,
		core.FactorAgeFit,
	}
	for i, want := range wantOrder {
		if factors[i].Type != want {
			t.Errorf("factors[%d].Type = %s, want %s", i, factors[i].Type, want)
		}
	}
	if factors[0].Args["category"] != "Health" {
		t.Errorf("category arg = %v", factors[0].Args)
	}
	if factors[2].Args["level"] != "high" {
		t.Errorf("level arg = %v", factors[2].Args)
	}
}

// 成功率因子只透出定性档位：>=0.75 为 high，[0.6,0.75) 为 moderate，<0.6 不成为因子。
func TestExtractFactorsProbabilityBuckets(t *testing.T) {
	cases := []struct {
		prob  string
		level string
	}{
		{"0.900000", "high"},
		{"0.750000", "high"},
		{"0.650000", "moderate"},
		{"0.600000", "moderate"},
		{"0.590000", ""},
	}
	for _, tc := range cases {
		rctx, it := explainFixture()
		it.Labels["signal_success"] = utils.Label{Value: tc.prob, Source: "rank.fusion"}

		var got string
		for _, f := range ExtractFactors(rctx, it) {
			if f.Type == core.FactorSuccessProb {
				got = f.Args["level"]
			}
		}
		if got != tc.level {
			t.Errorf("prob %s level = %q, want %q", tc.prob, got, tc.level)
		}
	}
}

func TestExtractFactorsSkipsUncalibrated(t *testing.T) {
	rctx, it := explainFixture()
	it.PutLabel("uncalibrated", utils.Label{Value: "true", Source: "rank.fusion"})
	for _, f := range ExtractFactors(rctx, it) {
		if f.Type == core.FactorSuccessProb {
			t.Error("uncalibrated probability must not surface as a factor")
		}
	}
}

func TestRenderLocales(t *testing.T) {
	factors := []core.FactorScore{
		{Type: core.FactorCategoryMatch, Importance: 0.9, Args: map[string]string{"category": "Health"}},
		{Type: core.FactorAgeFit, Importance: 0.5},
	}

	en := Render("en", factors, 3)
	if !strings.Contains(en, "Health improvement goal") || !strings.Contains(en, "age group") {
		t.Errorf("en = %q", en)
	}
	if !strings.HasPrefix(en, "Recommended because ") || !strings.HasSuffix(en, ".") {
		t.Errorf("en sentence shape = %q", en)
	}

	ru := Render("ru", factors, 3)
	if !strings.Contains(ru, "Health") || !strings.HasPrefix(ru, "Рекомендуется") {
		t.Errorf("ru = %q", ru)
	}

	// 未知语言回退英文
	if got := Render("fr", factors, 3); got != en {
		t.Errorf("fallback = %q, want %q", got, en)
	}
}

func TestRenderLimitsFactors(t *testing.T) {
	factors := []core.FactorScore{
		{Type: core.FactorCategoryMatch, Importance: 0.9, Args: map[string]string{"category": "a"}},
		{Type: core.FactorPreferenceMatch, Importance: 0.8, Args: map[string]string{"activity": "b"}},
		{Type: core.FactorSuccessProb, Importance: 0.7, Args: map[string]string{"level": "high"}},
		{Type: core.FactorAgeFit, Importance: 0.5},
	}
	got := Render("en", factors, 3)
	if strings.Contains(got, "age group") {
		t.Errorf("fourth factor leaked into a 3-factor explanation: %q", got)
	}
}

// 成功率解释按语言给定性说法，不出现原始概率数字。
func TestRenderQualitativeProbability(t *testing.T) {
	factors := []core.FactorScore{
		{Type: core.FactorSuccessProb, Importance: 0.7, Args: map[string]string{"level": "high"}},
	}

	en := Render("en", factors, 3)
	if !strings.Contains(en, "a high chance") {
		t.Errorf("en = %q", en)
	}
	ru := Render("ru", factors, 3)
	if !strings.Contains(ru, "высокая") {
		t.Errorf("ru = %q", ru)
	}
	for _, got := range []string{en, ru} {
		if strings.ContainsAny(got, "0123456789%") {
			t.Errorf("raw probability leaked into %q", got)
		}
	}
	// 渲染不得改写因子参数
	if factors[0].Args["level"] != "high" {
		t.Errorf("args mutated: %v", factors[0].Args)
	}
}

func TestRenderTimeFitMinutes(t *testing.T) {
	factors := []core.FactorScore{
		{Type: core.FactorTimeFit, Importance: 0.4, Args: map[string]string{"time_of_day": "morning", "minutes": "15"}},
	}
	en := Render("en", factors, 3)
	if !strings.Contains(en, "15-minute") || !strings.Contains(en, "morning") {
		t.Errorf("en = %q", en)
	}
	ru := Render("ru", factors, 3)
	if !strings.Contains(ru, "15 минут") {
		t.Errorf("ru = %q", ru)
	}
}

// 时段契合因子与重排层同序解析当前时段：请求参数优先，历史偏好兜底。
func TestExtractFactorsTimeOfDayParam(t *testing.T) {
	rctx, it := explainFixture()
	it.Meta["preferred_time"] = "morning"
	it.Meta["minutes"] = 15

	hasTimeFit := func() bool {
		for _, f := range ExtractFactors(rctx, it) {
			if f.Type == core.FactorTimeFit {
				return true
			}
		}
		return false
	}

	// 无参数也无历史：时段未知，不产生因子
	if hasTimeFit() {
		t.Error("time_fit emitted without a resolvable time of day")
	}

	// 请求参数指定当前时段，与习惯期望时段一致
	rctx.Params = map[string]any{"time_of_day": "morning"}
	if !hasTimeFit() {
		t.Error("time_fit missing when params time_of_day matches")
	}

	// 请求参数优先于历史偏好：历史集中在晚间，参数仍是早晨
	summary := &core.CompletionSummary{}
	summary.CompletionHours[20] = 5
	rctx.User.Summary = summary
	if !hasTimeFit() {
		t.Error("params time_of_day must take precedence over history")
	}

	// 参数缺省回退历史偏好：晚间偏好与早晨习惯不合
	rctx.Params = nil
	if hasTimeFit() {
		t.Error("evening history must not match a morning habit")
	}

	// 因子参数携带渲染需要的时段与分钟数
	rctx.Params = map[string]any{"time_of_day": "morning"}
	for _, f := range ExtractFactors(rctx, it) {
		if f.Type == core.FactorTimeFit {
			if f.Args["minutes"] != "15" || f.Args["time_of_day"] != "morning" {
				t.Errorf("time_fit args = %v", f.Args)
			}
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := Render("en", nil, 3); got != "" {
		t.Errorf("Render(nil) = %q, want empty", got)
	}
}

func TestExplainNode(t *testing.T) {
	rctx, it := explainFixture()
	rctx.Params = map[string]any{"locale": "ru"}

	n := &Node{}
	out, err := n.Process(context.Background(), rctx, []*core.Item{it})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	explanation, _ := out[0].Meta["explanation"].(string)
	if !strings.HasPrefix(explanation, "Рекомендуется") {
		t.Errorf("explanation = %q, want russian text", explanation)
	}
	factors, _ := out[0].Meta["factors"].([]core.FactorScore)
	if len(factors) == 0 {
		t.Error("factors missing from meta")
	}
}
