package feature

import (
	"context"
	"testing"

	"github.com/rushteam/habitkit/core"
)

func encoderFixture(t *testing.T) (*Encoder, *core.Catalog) {
	t.Helper()

	catalog := core.NewCatalog("cat-v1", []*core.Habit{
		{ID: "h1", Category: "Health", Description: "run every morning", Minutes: 20, Difficulty: 2,
			Frequency: core.FrequencyDaily, MinAge: 13, MaxAge: 90, ActivityType: "Physical"},
		{ID: "h2", Category: "Finance", Description: "track expenses", Minutes: 10, Difficulty: 1,
			Frequency: core.FrequencyWeekly, MinAge: 18, MaxAge: 90, ActivityType: "Mental"},
	})
	profiles := []*core.UserProfile{
		{UserID: "u1", Age: 25, TimeCommitment: core.CommitmentMedium,
			ActivityPreferences: map[string]bool{"Physical": true}, ImprovementAreas: map[string]bool{"Health": true}},
		{UserID: "u2", Age: 40, TimeCommitment: core.CommitmentLow,
			ActivityPreferences: map[string]bool{"Mental": true}, ImprovementAreas: map[string]bool{"Finance": true}},
	}
	enc, err := FitEncoder(profiles, catalog)
	if err != nil {
		t.Fatalf("FitEncoder() error = %v", err)
	}
	return enc, catalog
}

func TestFitEncoderEmptyCatalog(t *testing.T) {
	if _, err := FitEncoder(nil, core.NewCatalog("v", nil)); !core.IsInsufficientData(err) {
		t.Errorf("FitEncoder(empty catalog) error = %v, want INSUFFICIENT_DATA", err)
	}
}

func TestEncodeUser(t *testing.T) {
	enc, _ := encoderFixture(t)

	p := &core.UserProfile{
		UserID: "u1", Age: 25, TimeCommitment: core.CommitmentMedium,
		ActivityPreferences: map[string]bool{"Physical": true, "Swimming": true},
		ImprovementAreas:    map[string]bool{"Health": true},
	}
	vec, err := enc.EncodeUser(context.Background(), p)
	if err != nil {
		t.Fatalf("EncodeUser() error = %v", err)
	}
	if vec["age"] != 0 {
		t.Errorf("age = %v, want 0 (corpus minimum)", vec["age"])
	}
	if vec["act_Physical"] != 1 {
		t.Errorf("act_Physical = %v, want 1", vec["act_Physical"])
	}
	// 词表之外的偏好静默忽略，不是错误
	if _, ok := vec["act_Swimming"]; ok {
		t.Error("out-of-vocabulary activity leaked into the vector")
	}
	if vec["cat_Health"] != 1 {
		t.Errorf("cat_Health = %v, want 1", vec["cat_Health"])
	}
	if vec["time_commitment"] != 2.0/3 {
		t.Errorf("time_commitment = %v, want 2/3", vec["time_commitment"])
	}
}

func TestEncodeUserImputesMissing(t *testing.T) {
	enc, _ := encoderFixture(t)

	// 年龄缺失回退到参考语料中位数，集合缺失回退到空集哨兵
	p := &core.UserProfile{UserID: "u3"}
	vec, err := enc.EncodeUser(context.Background(), p)
	if err != nil {
		t.Fatalf("EncodeUser() error = %v", err)
	}
	if vec["age"] < 0 || vec["age"] > 1 {
		t.Errorf("imputed age = %v, want in [0,1]", vec["age"])
	}
}

func TestEncodeUserRejectsOutOfRangeAge(t *testing.T) {
	enc, _ := encoderFixture(t)

	p := &core.UserProfile{
		UserID: "kid", Age: 7,
		ActivityPreferences: map[string]bool{}, ImprovementAreas: map[string]bool{},
	}
	if _, err := enc.EncodeUser(context.Background(), p); !core.IsInvalidInput(err) {
		t.Errorf("EncodeUser(age 7) error = %v, want INVALID_INPUT", err)
	}
}

func TestEncodeHabit(t *testing.T) {
	enc, catalog := encoderFixture(t)

	vec, err := enc.EncodeHabit(context.Background(), catalog.Get("h1"))
	if err != nil {
		t.Fatalf("EncodeHabit() error = %v", err)
	}
	if vec["minutes"] != 1 {
		t.Errorf("minutes = %v, want 1 (corpus maximum)", vec["minutes"])
	}
	if vec["difficulty"] != 0.25 {
		t.Errorf("difficulty = %v, want 0.25", vec["difficulty"])
	}
	if vec["freq_daily"] != 1 {
		t.Errorf("freq_daily = %v, want 1", vec["freq_daily"])
	}
	if vec["cat_Health"] != 1 || vec["act_Physical"] != 1 {
		t.Errorf("one-hot blocks = cat_Health:%v act_Physical:%v, want 1/1", vec["cat_Health"], vec["act_Physical"])
	}

	if _, err := enc.EncodeHabit(context.Background(), &core.Habit{ID: "bad", Minutes: -1}); !core.IsInvalidInput(err) {
		t.Errorf("EncodeHabit(invalid) error = %v, want INVALID_INPUT", err)
	}
}

func TestEncoderDeterministic(t *testing.T) {
	a, catalog := encoderFixture(t)
	b, _ := encoderFixture(t)

	va, err := a.EncodeHabit(context.Background(), catalog.Get("h2"))
	if err != nil {
		t.Fatalf("EncodeHabit() error = %v", err)
	}
	vb, err := b.EncodeHabit(context.Background(), catalog.Get("h2"))
	if err != nil {
		t.Fatalf("EncodeHabit() error = %v", err)
	}
	if len(va) != len(vb) {
		t.Fatalf("vector sizes differ: %d vs %d", len(va), len(vb))
	}
	for k, v := range va {
		if vb[k] != v {
			t.Errorf("%s = %v vs %v across identical fits", k, v, vb[k])
		}
	}
}

func TestCrossFeatures(t *testing.T) {
	enc, catalog := encoderFixture(t)

	p := &core.UserProfile{
		UserID: "u1", Age: 25, TimeCommitment: core.CommitmentLow,
		ActivityPreferences: map[string]bool{"Physical": true},
		ImprovementAreas:    map[string]bool{"Health": true},
	}
	cross := enc.CrossFeatures(p, catalog.Get("h1"))
	if cross["cross_category_match"] != 1 {
		t.Errorf("cross_category_match = %v, want 1", cross["cross_category_match"])
	}
	if cross["cross_activity_match"] != 1 {
		t.Errorf("cross_activity_match = %v, want 1", cross["cross_activity_match"])
	}
	// 预算 15 分钟对 20 分钟的习惯：契合度 0.75
	if cross["cross_minutes_fit"] != 0.75 {
		t.Errorf("cross_minutes_fit = %v, want 0.75", cross["cross_minutes_fit"])
	}
	if cross["cross_age_fit"] != 1 {
		t.Errorf("cross_age_fit = %v, want 1", cross["cross_age_fit"])
	}
	// 无完成历史：时段契合不计
	if _, ok := cross["cross_time_fit"]; ok {
		t.Error("cross_time_fit set without completion history")
	}
}

func TestPairFeatures(t *testing.T) {
	got := PairFeatures(
		map[string]float64{"age": 0.5, "cat_Health": 1},
		map[string]float64{"minutes": 1, "cat_Health": 1},
		map[string]float64{"cross_category_match": 1},
	)
	// 用户/习惯共轴的维度靠前缀区分，互不覆盖
	if got["u_cat_Health"] != 1 || got["h_cat_Health"] != 1 {
		t.Errorf("prefixed dims = u:%v h:%v, want 1/1", got["u_cat_Health"], got["h_cat_Health"])
	}
	if got["cross_category_match"] != 1 {
		t.Errorf("cross_category_match = %v, want 1", got["cross_category_match"])
	}
	if len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}

func TestTFIDFVectorize(t *testing.T) {
	tfidf := FitTFIDF([]string{"run every morning", "track expenses", "run far"})

	vec := tfidf.Vectorize("txt_", "run")
	if vec["txt_run"] != 1 {
		t.Errorf("single-token vector = %v, want L2-normalized 1", vec["txt_run"])
	}
	// OOV token 静默丢弃
	if got := tfidf.Vectorize("txt_", "quux"); len(got) != 0 {
		t.Errorf("Vectorize(oov) = %v, want empty", got)
	}
	if got := tfidf.Vectorize("txt_", ""); len(got) != 0 {
		t.Errorf("Vectorize(empty) = %v, want empty", got)
	}
}

func TestVocabularyEncode(t *testing.T) {
	v := NewVocabulary("v1", []string{"Physical", "Mental", "Physical", ""})
	if len(v.Terms) != 2 {
		t.Fatalf("Terms = %v, want 2 deduped entries", v.Terms)
	}
	if got := v.EncodeOne("act_", "Yoga"); len(got) != 0 {
		t.Errorf("EncodeOne(oov) = %v, want empty", got)
	}
	got := v.EncodeSet("act_", map[string]bool{"Physical": true, "Mental": false, "Yoga": true})
	if len(got) != 1 || got["act_Physical"] != 1 {
		t.Errorf("EncodeSet = %v, want only act_Physical", got)
	}
}
