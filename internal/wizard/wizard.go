package wizard

import (
	"context"
	"time"

	"github.com/storedeck/storedeck/internal/store"
)

// Step1 holds test basics.
type Step1 struct {
	Name      string `json:"name"`
	TestType  string `json:"testType"`
	GoalEvent string `json:"goalEvent"`
	BaseURL   string `json:"baseUrl"`
}

// Step2 holds the variant list with traffic allocations.
type Step2 struct {
	Variants []store.Variant `json:"variants"`
}

// Step3 holds optional targeting rules.
type Step3 struct {
	Targeting []store.TargetingRule `json:"targeting"`
}

// Step4 holds the schedule.
type Step4 struct {
	StartOption string     `json:"startOption"` // "immediately" or "scheduled"
	StartAt     *time.Time `json:"startAt,omitempty"`
	EndAt       *time.Time `json:"endAt,omitempty"`
	Timezone    string     `json:"timezone"`
}

// Data is the composite wizard document. Step pointers are nil until the
// corresponding step has been filled in. The review step is derived, not
// stored.
type Data struct {
	Step1 *Step1 `json:"step1,omitempty"`
	Step2 *Step2 `json:"step2,omitempty"`
	Step3 *Step3 `json:"step3,omitempty"`
	Step4 *Step4 `json:"step4,omitempty"`
}

// TestCreator is the external collaborator Submit calls. Satisfied by
// *store.SQLiteStore.
type TestCreator interface {
	CreateTest(ctx context.Context, nt store.NewTest) (*store.Test, error)
}

// Wizard accumulates partial step data across the five-step create-test
// flow and gates forward navigation. State is ephemeral: created empty,
// mutated step by step, discarded after Submit.
type Wizard struct {
	data    Data
	creator TestCreator
}

func New(creator TestCreator) *Wizard {
	return &Wizard{creator: creator}
}

// Data returns the accumulated document.
func (w *Wizard) Data() Data {
	return w.data
}

// Update shallow-merges a partial document: a non-nil step pointer
// replaces that whole step. There is no deep merge.
func (w *Wizard) Update(partial Data) {
	if partial.Step1 != nil {
		w.data.Step1 = partial.Step1
	}
	if partial.Step2 != nil {
		w.data.Step2 = partial.Step2
	}
	if partial.Step3 != nil {
		w.data.Step3 = partial.Step3
	}
	if partial.Step4 != nil {
		w.data.Step4 = partial.Step4
	}
}

// CanProceed reports whether forward navigation out of the given step is
// allowed. Step 3 (targeting) and step 5 (review) are always passable;
// review issues are display-only and do not gate here.
func (w *Wizard) CanProceed(step int) bool {
	switch step {
	case 1:
		s := w.data.Step1
		return s != nil && s.Name != "" && s.TestType != "" && s.GoalEvent != "" && s.BaseURL != ""
	case 2:
		return w.data.Step2 != nil && len(w.data.Step2.Variants) >= 2
	case 3:
		return true
	case 4:
		s := w.data.Step4
		return s != nil && s.StartOption != "" && s.Timezone != ""
	case 5:
		return true
	default:
		return false
	}
}

// EqualizeTraffic splits 100% across n variants: each gets floor(100/n)
// and the integer remainder goes entirely to index 0 (the control), so
// the sum is exactly 100.
func EqualizeTraffic(n int) []int {
	if n <= 0 {
		return nil
	}
	base := 100 / n
	remainder := 100 - base*n

	allocations := make([]int, n)
	for i := range allocations {
		allocations[i] = base
	}
	allocations[0] += remainder
	return allocations
}

// ReviewIssues lists human-readable problems for the review step. The
// list is display-only; submission gating is CanProceed's job.
func (w *Wizard) ReviewIssues() []string {
	var issues []string

	if w.data.Step1 == nil || w.data.Step1.Name == "" {
		issues = append(issues, "Test name is required")
	}
	if w.data.Step1 == nil || w.data.Step1.BaseURL == "" {
		issues = append(issues, "Base URL is required")
	}

	if w.data.Step2 == nil || len(w.data.Step2.Variants) < 2 {
		issues = append(issues, "At least 2 variants are required")
	}
	// The allocation check only applies once variants exist; an empty
	// list is already reported by the variant-count issue above.
	if w.data.Step2 != nil && len(w.data.Step2.Variants) > 0 {
		sum := 0
		for _, v := range w.data.Step2.Variants {
			sum += v.TrafficAllocation
		}
		if sum != 100 {
			issues = append(issues, "Traffic allocation must equal 100%")
		}
	}

	return issues
}

// Submit creates the test through the collaborator. Errors are returned
// verbatim; there is no retry or partial-success handling.
func (w *Wizard) Submit(ctx context.Context) (*store.Test, error) {
	nt := store.NewTest{}

	if w.data.Step1 != nil {
		nt.Name = w.data.Step1.Name
		nt.TestType = w.data.Step1.TestType
		nt.GoalEvent = w.data.Step1.GoalEvent
		nt.BaseURL = w.data.Step1.BaseURL
	}
	if w.data.Step2 != nil {
		nt.Variants = w.data.Step2.Variants
	}
	if w.data.Step3 != nil {
		nt.Targeting = w.data.Step3.Targeting
	}
	if w.data.Step4 != nil {
		nt.StartOption = w.data.Step4.StartOption
		nt.StartAt = w.data.Step4.StartAt
		nt.EndAt = w.data.Step4.EndAt
		nt.Timezone = w.data.Step4.Timezone
	}

	return w.creator.CreateTest(ctx, nt)
}
