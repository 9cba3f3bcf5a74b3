package ai_test

import (
	"testing"

	"github.com/crs-edu/crs-backend/internal/ai"
)

func TestInMemoryUsage_NoBudgetIsUnlimited(t *testing.T) {
	u := ai.NewInMemoryUsage()

	ok, err := u.Allow("uni-1")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !ok {
		t.Error("Allow() = false with no budget set, want unlimited")
	}
}

func TestInMemoryUsage_BudgetEnforced(t *testing.T) {
	u := ai.NewInMemoryUsage()
	u.SetBudget("uni-1", 100)

	if err := u.Record("uni-1", 60); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if ok, _ := u.Allow("uni-1"); !ok {
		t.Error("Allow() = false under budget")
	}

	if err := u.Record("uni-1", 50); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if ok, _ := u.Allow("uni-1"); ok {
		t.Error("Allow() = true over budget")
	}

	used, budget, err := u.Usage("uni-1")
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if used != 110 || budget != 100 {
		t.Errorf("Usage() = %d/%d, want 110/100", used, budget)
	}
}

func TestInMemoryUsage_RejectsNegative(t *testing.T) {
	u := ai.NewInMemoryUsage()
	if err := u.Record("uni-1", -1); err == nil {
		t.Error("Record(-1) should fail")
	}
}

func TestInMemoryUsage_UniversitiesIsolated(t *testing.T) {
	u := ai.NewInMemoryUsage()
	u.SetBudget("uni-1", 10)
	_ = u.Record("uni-1", 20)

	if ok, _ := u.Allow("uni-2"); !ok {
		t.Error("uni-2 should be unaffected by uni-1 spend")
	}
}
