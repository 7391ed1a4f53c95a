package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/storedeck/storedeck/internal/store"
)

func TestEqualizeTraffic_SumsTo100(t *testing.T) {
	for n := 2; n <= 12; n++ {
		allocations := EqualizeTraffic(n)
		if len(allocations) != n {
			t.Fatalf("n=%d: got %d allocations", n, len(allocations))
		}

		sum := 0
		for _, a := range allocations {
			sum += a
		}
		if sum != 100 {
			t.Errorf("n=%d: allocations sum to %d, want 100", n, sum)
		}
	}
}

func TestEqualizeTraffic_RemainderToControl(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{2, []int{50, 50}},
		{3, []int{34, 33, 33}},
		{4, []int{25, 25, 25, 25}},
		{7, []int{16, 14, 14, 14, 14, 14, 14}},
	}

	for _, tt := range tests {
		got := EqualizeTraffic(tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("n=%d: got %v, want %v", tt.n, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("n=%d: got %v, want %v", tt.n, got, tt.want)
				break
			}
		}
	}
}

func TestEqualizeTraffic_InvalidCount(t *testing.T) {
	if got := EqualizeTraffic(0); got != nil {
		t.Errorf("expected nil for n=0, got %v", got)
	}
	if got := EqualizeTraffic(-1); got != nil {
		t.Errorf("expected nil for n=-1, got %v", got)
	}
}

func completeStep1() *Step1 {
	return &Step1{
		Name:      "Homepage hero",
		TestType:  "split_url",
		GoalEvent: "checkout",
		BaseURL:   "https://shop.example.com",
	}
}

func twoVariants() *Step2 {
	return &Step2{Variants: []store.Variant{
		{Name: "Control", TrafficAllocation: 50, IsControl: true},
		{Name: "Challenger", TrafficAllocation: 50},
	}}
}

func TestCanProceed_Step1RequiresAllFields(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(*Step1)
	}{
		{"missing name", func(s *Step1) { s.Name = "" }},
		{"missing test type", func(s *Step1) { s.TestType = "" }},
		{"missing goal event", func(s *Step1) { s.GoalEvent = "" }},
		{"missing base url", func(s *Step1) { s.BaseURL = "" }},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			w := New(nil)
			s1 := completeStep1()
			tt.mutate(s1)
			w.Update(Data{Step1: s1})

			if w.CanProceed(1) {
				t.Error("expected CanProceed(1) = false")
			}
		})
	}

	w := New(nil)
	w.Update(Data{Step1: completeStep1()})
	if !w.CanProceed(1) {
		t.Error("expected CanProceed(1) = true with all fields set")
	}
}

func TestCanProceed_Step1IgnoresLaterSteps(t *testing.T) {
	w := New(nil)
	w.Update(Data{Step1: completeStep1()})

	// Steps 2-4 untouched; step 1 gating must not care.
	if !w.CanProceed(1) {
		t.Error("CanProceed(1) should be independent of steps 2-4")
	}
}

func TestCanProceed_Step2NeedsTwoVariants(t *testing.T) {
	w := New(nil)
	if w.CanProceed(2) {
		t.Error("expected false with no variants")
	}

	w.Update(Data{Step2: &Step2{Variants: []store.Variant{{Name: "Only"}}}})
	if w.CanProceed(2) {
		t.Error("expected false with one variant")
	}

	w.Update(Data{Step2: twoVariants()})
	if !w.CanProceed(2) {
		t.Error("expected true with two variants")
	}
}

func TestCanProceed_OptionalSteps(t *testing.T) {
	w := New(nil)

	if !w.CanProceed(3) {
		t.Error("step 3 (targeting) should always be passable")
	}
	if !w.CanProceed(5) {
		t.Error("step 5 (review) should always be passable")
	}
}

func TestCanProceed_Step4Schedule(t *testing.T) {
	w := New(nil)
	if w.CanProceed(4) {
		t.Error("expected false with no schedule")
	}

	w.Update(Data{Step4: &Step4{StartOption: "immediately"}})
	if w.CanProceed(4) {
		t.Error("expected false without timezone")
	}

	w.Update(Data{Step4: &Step4{StartOption: "immediately", Timezone: "UTC"}})
	if !w.CanProceed(4) {
		t.Error("expected true with start option and timezone")
	}
}

func TestUpdate_ShallowMerge(t *testing.T) {
	w := New(nil)
	w.Update(Data{Step2: &Step2{Variants: []store.Variant{
		{Name: "A", URL: "/a", TrafficAllocation: 50},
		{Name: "B", URL: "/b", TrafficAllocation: 50},
	}}})

	// Replacing step2 replaces all of step2; the old variants are gone.
	w.Update(Data{Step2: &Step2{Variants: []store.Variant{
		{Name: "C", TrafficAllocation: 100},
	}}})

	got := w.Data().Step2.Variants
	if len(got) != 1 || got[0].Name != "C" {
		t.Errorf("expected step2 to be wholly replaced, got %+v", got)
	}

	// Other steps untouched by a partial that omits them.
	w.Update(Data{Step1: completeStep1()})
	if w.Data().Step2 == nil {
		t.Error("updating step1 must not clear step2")
	}
}

func TestReviewIssues_AllocationMustEqual100(t *testing.T) {
	w := New(nil)
	w.Update(Data{
		Step1: completeStep1(),
		Step2: &Step2{Variants: []store.Variant{
			{Name: "Control", TrafficAllocation: 60, IsControl: true},
			{Name: "Challenger", TrafficAllocation: 30},
		}},
	})

	if !containsIssue(w.ReviewIssues(), "Traffic allocation must equal 100%") {
		t.Error("expected allocation issue when sum is 90")
	}

	w.Update(Data{Step2: twoVariants()})
	if containsIssue(w.ReviewIssues(), "Traffic allocation must equal 100%") {
		t.Error("expected no allocation issue when sum is 100")
	}
}

func TestReviewIssues_EmptyVariants(t *testing.T) {
	w := New(nil)
	w.Update(Data{
		Step1: completeStep1(),
		Step2: &Step2{Variants: nil},
	})

	issues := w.ReviewIssues()
	if !containsIssue(issues, "At least 2 variants are required") {
		t.Errorf("expected variant count issue in %v", issues)
	}
	// The count issue stands alone for an empty list; no allocation issue.
	if containsIssue(issues, "Traffic allocation must equal 100%") {
		t.Errorf("expected no allocation issue for empty variants, got %v", issues)
	}
}

func TestReviewIssues_MissingFields(t *testing.T) {
	w := New(nil)
	issues := w.ReviewIssues()

	for _, want := range []string{
		"Test name is required",
		"Base URL is required",
		"At least 2 variants are required",
	} {
		if !containsIssue(issues, want) {
			t.Errorf("expected issue %q in %v", want, issues)
		}
	}
}

func TestReviewIssues_CleanWizard(t *testing.T) {
	w := New(nil)
	w.Update(Data{
		Step1: completeStep1(),
		Step2: twoVariants(),
		Step4: &Step4{StartOption: "immediately", Timezone: "UTC"},
	})

	if issues := w.ReviewIssues(); len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}

func containsIssue(issues []string, want string) bool {
	for _, issue := range issues {
		if issue == want {
			return true
		}
	}
	return false
}

type fakeCreator struct {
	got store.NewTest
	err error
}

func (f *fakeCreator) CreateTest(_ context.Context, nt store.NewTest) (*store.Test, error) {
	f.got = nt
	if f.err != nil {
		return nil, f.err
	}
	return &store.Test{Name: nt.Name}, nil
}

func TestSubmit_BuildsCompositeTest(t *testing.T) {
	creator := &fakeCreator{}
	w := New(creator)
	w.Update(Data{
		Step1: completeStep1(),
		Step2: twoVariants(),
		Step3: &Step3{Targeting: []store.TargetingRule{{Attribute: "country", Operator: "eq", Value: "US"}}},
		Step4: &Step4{StartOption: "immediately", Timezone: "America/New_York"},
	})

	if _, err := w.Submit(context.Background()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if creator.got.Name != "Homepage hero" {
		t.Errorf("got name %q", creator.got.Name)
	}
	if len(creator.got.Variants) != 2 {
		t.Errorf("got %d variants", len(creator.got.Variants))
	}
	if len(creator.got.Targeting) != 1 {
		t.Errorf("got %d targeting rules", len(creator.got.Targeting))
	}
	if creator.got.Timezone != "America/New_York" {
		t.Errorf("got timezone %q", creator.got.Timezone)
	}
}

func TestSubmit_ErrorVerbatim(t *testing.T) {
	creator := &fakeCreator{err: errors.New("UNIQUE constraint failed: tests.name")}
	w := New(creator)

	_, err := w.Submit(context.Background())
	if err == nil || err.Error() != "UNIQUE constraint failed: tests.name" {
		t.Errorf("expected the raw collaborator error, got %v", err)
	}
}
