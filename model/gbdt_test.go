package model

import (
	"testing"

	"github.com/rushteam/habitkit/core"
)

func separableSamples() []Sample {
	var samples []Sample
	for i := 0; i < 10; i++ {
		samples = append(samples, Sample{
			Features: map[string]float64{"cross_minutes_fit": 1, "age": 0.5},
			Label:    true,
		})
		samples = append(samples, Sample{
			Features: map[string]float64{"cross_minutes_fit": 0, "age": 0.5},
			Label:    false,
		})
	}
	return samples
}

func TestTrainGBDTSeparable(t *testing.T) {
	m, err := TrainGBDT(separableSamples(), nil)
	if err != nil {
		t.Fatalf("TrainGBDT() error = %v", err)
	}
	if len(m.Stumps) == 0 {
		t.Fatal("no stumps learned on separable data")
	}
	high := m.PredictRaw(map[string]float64{"cross_minutes_fit": 1})
	low := m.PredictRaw(map[string]float64{"cross_minutes_fit": 0})
	if high <= low {
		t.Errorf("PredictRaw(fit=1)=%v should exceed PredictRaw(fit=0)=%v", high, low)
	}
	if sigmoid(high) < 0.8 {
		t.Errorf("sigmoid(high)=%v, want >= 0.8 on separable data", sigmoid(high))
	}
	if sigmoid(low) > 0.2 {
		t.Errorf("sigmoid(low)=%v, want <= 0.2 on separable data", sigmoid(low))
	}
}

func TestTrainGBDTDeterministic(t *testing.T) {
	samples := separableSamples()
	a, err := TrainGBDT(samples, nil)
	if err != nil {
		t.Fatalf("TrainGBDT() error = %v", err)
	}
	b, err := TrainGBDT(samples, nil)
	if err != nil {
		t.Fatalf("TrainGBDT() error = %v", err)
	}
	probe := map[string]float64{"cross_minutes_fit": 0.4, "age": 0.9}
	if a.PredictRaw(probe) != b.PredictRaw(probe) {
		t.Error("identical training runs produced different models")
	}
}

func TestTrainGBDTSingleClass(t *testing.T) {
	samples := []Sample{
		{Features: map[string]float64{"age": 0.1}, Label: true},
		{Features: map[string]float64{"age": 0.9}, Label: true},
	}
	_, err := TrainGBDT(samples, nil)
	if !core.IsInsufficientData(err) {
		t.Errorf("TrainGBDT(single class) error = %v, want INSUFFICIENT_DATA", err)
	}
}

func TestTrainGBDTEmpty(t *testing.T) {
	_, err := TrainGBDT(nil, nil)
	if !core.IsInsufficientData(err) {
		t.Errorf("TrainGBDT(nil) error = %v, want INSUFFICIENT_DATA", err)
	}
}
