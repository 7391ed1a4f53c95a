package stats

import (
	"math"
	"testing"

	"github.com/storedeck/storedeck/internal/store"
)

func TestWilsonInterval(t *testing.T) {
	tests := []struct {
		name       string
		successes  int
		trials     int
		confidence float64
	}{
		{"no trials", 0, 0, 0.95},
		{"all successes", 100, 100, 0.95},
		{"no successes", 0, 100, 0.95},
		{"half", 50, 100, 0.95},
		{"small sample", 3, 10, 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, upper := WilsonInterval(tt.successes, tt.trials, tt.confidence)

			if lower < 0 || upper > 1 {
				t.Errorf("interval [%f, %f] outside [0, 1]", lower, upper)
			}
			if lower > upper {
				t.Errorf("lower %f > upper %f", lower, upper)
			}

			if tt.trials > 0 {
				p := float64(tt.successes) / float64(tt.trials)
				if p > 0 && p < 1 && (p < lower || p > upper) {
					t.Errorf("point estimate %f outside interval [%f, %f]", p, lower, upper)
				}
			}
		})
	}
}

func TestWilsonInterval_NarrowsWithSampleSize(t *testing.T) {
	smallLo, smallHi := WilsonInterval(5, 10, 0.95)
	largeLo, largeHi := WilsonInterval(500, 1000, 0.95)

	if (largeHi - largeLo) >= (smallHi - smallLo) {
		t.Errorf("larger sample should narrow the interval: small %f, large %f",
			smallHi-smallLo, largeHi-largeLo)
	}
}

func TestZScore(t *testing.T) {
	tests := []struct {
		confidence float64
		want       float64
	}{
		{0.99, 2.576},
		{0.95, 1.96},
		{0.90, 1.645},
		{0.80, 1.28},
	}

	for _, tt := range tests {
		if got := ZScore(tt.confidence); got != tt.want {
			t.Errorf("ZScore(%v) = %v, want %v", tt.confidence, got, tt.want)
		}
	}

	// The approximation path should land close to the known 95% value.
	approx := approximateZScore(0.95)
	if math.Abs(approx-1.96) > 0.01 {
		t.Errorf("approximateZScore(0.95) = %v, want ~1.96", approx)
	}
}

func TestSignificanceTest(t *testing.T) {
	// No data: no opinion either way.
	if got := SignificanceTest(0, 0, 10, 100); got != 0.5 {
		t.Errorf("no data should return 0.5, got %v", got)
	}

	// Clear winner: A converts at 20%, B at 5%, decent sample.
	conf := SignificanceTest(100, 500, 25, 500)
	if conf < 0.99 {
		t.Errorf("clear winner confidence = %v, want >= 0.99", conf)
	}

	// Mirror image: B beating A drives confidence toward 0.
	conf = SignificanceTest(25, 500, 100, 500)
	if conf > 0.01 {
		t.Errorf("clear loser confidence = %v, want <= 0.01", conf)
	}

	// Identical data: dead even.
	conf = SignificanceTest(50, 500, 50, 500)
	if math.Abs(conf-0.5) > 0.001 {
		t.Errorf("identical variants = %v, want 0.5", conf)
	}
}

func sampleTest() *store.Test {
	return &store.Test{
		Variants: []store.Variant{
			{Name: "Control", TrafficAllocation: 50, IsControl: true},
			{Name: "Challenger", TrafficAllocation: 50},
		},
	}
}

func TestAnalyze(t *testing.T) {
	result := Analyze(sampleTest(), []store.VariantStats{
		{Variant: 0, Views: 1000, Conversions: 50},
		{Variant: 1, Views: 1000, Conversions: 120},
	})

	if len(result.Variants) != 2 {
		t.Fatalf("got %d variants", len(result.Variants))
	}
	if result.LeadingVariant != 1 {
		t.Errorf("leading variant = %d, want 1", result.LeadingVariant)
	}
	if !result.Confident {
		t.Errorf("12%% vs 5%% at n=1000 should be confident, got %v", result.ConfidenceLevel)
	}
	if result.Variants[1].Rate != 0.12 {
		t.Errorf("rate = %v", result.Variants[1].Rate)
	}
}

func TestAnalyze_NoEvents(t *testing.T) {
	result := Analyze(sampleTest(), nil)

	if result.LeadingVariant != 0 {
		t.Errorf("with no data the control leads, got %d", result.LeadingVariant)
	}
	if result.Confident {
		t.Error("no data should not be confident")
	}
	for _, v := range result.Variants {
		if v.Rate != 0 || v.Views != 0 {
			t.Errorf("variant %d not zeroed: %+v", v.Index, v)
		}
	}
}

func TestAnalyze_ControlNotFirst(t *testing.T) {
	test := &store.Test{
		Variants: []store.Variant{
			{Name: "Challenger"},
			{Name: "Control", IsControl: true},
		},
	}

	result := Analyze(test, []store.VariantStats{
		{Variant: 0, Views: 100, Conversions: 2},
		{Variant: 1, Views: 100, Conversions: 10},
	})

	// The control leads; confidence measures the control against the best
	// challenger, still a meaningful number.
	if result.LeadingVariant != 1 {
		t.Errorf("leading variant = %d, want control index 1", result.LeadingVariant)
	}
	if result.ConfidenceLevel <= 0.5 {
		t.Errorf("control ahead should give confidence > 0.5, got %v", result.ConfidenceLevel)
	}
}
