package llm

import (
	"testing"
	"time"
)

func TestGovernorAdmitsUnderCeiling(t *testing.T) {
	g := NewGovernor(10, 1000000)
	now := time.Date(2025, 3, 27, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		if !g.Admit() {
			t.Errorf("Expected admission for call %d", i+1)
		}
	}

	if g.Admit() {
		t.Error("Expected 11th call within the same minute to be refused")
	}
}

func TestGovernorWindowSlides(t *testing.T) {
	g := NewGovernor(10, 1000000)
	now := time.Date(2025, 3, 27, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		g.Admit()
	}
	if g.Admit() {
		t.Error("Expected refusal at the ceiling")
	}

	now = now.Add(61 * time.Second)
	if !g.Admit() {
		t.Error("Expected admission after the window slid past old calls")
	}
}

func TestGovernorRefusalHasNoSideEffects(t *testing.T) {
	g := NewGovernor(1, 1000000)
	now := time.Date(2025, 3, 27, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	g.Admit()
	g.Admit()
	g.Admit()

	// Only one timestamp should be recorded; the next minute admits again.
	now = now.Add(61 * time.Second)
	if !g.Admit() {
		t.Error("Expected admission after window passed despite earlier refusals")
	}
}

func TestGovernorBudgetRefusal(t *testing.T) {
	g := NewGovernor(10, 500)
	now := time.Date(2025, 3, 27, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	g.RecordUsage(500)

	if !g.BudgetExhausted() {
		t.Error("Expected budget to be exhausted")
	}
	if g.Admit() {
		t.Error("Expected admission refusal once budget is spent")
	}
}

func TestGovernorBudgetRolloverAtUTCDay(t *testing.T) {
	g := NewGovernor(10, 500)
	now := time.Date(2025, 3, 27, 23, 59, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	g.RecordUsage(500)
	if !g.BudgetExhausted() {
		t.Error("Expected budget exhausted before midnight")
	}

	now = time.Date(2025, 3, 28, 0, 1, 0, 0, time.UTC)
	if g.BudgetExhausted() {
		t.Error("Expected budget reset after UTC day rollover")
	}
	if g.TokensSpent() != 0 {
		t.Errorf("Expected 0 tokens spent after rollover, got %d", g.TokensSpent())
	}
	if !g.Admit() {
		t.Error("Expected admission after rollover")
	}
}

func TestGovernorTracksSpend(t *testing.T) {
	g := NewGovernor(10, 1000)
	now := time.Date(2025, 3, 27, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	g.RecordUsage(200)
	g.RecordUsage(300)
	g.RecordUsage(0)
	g.RecordUsage(-5)

	if g.TokensSpent() != 500 {
		t.Errorf("Expected 500 tokens spent, got %d", g.TokensSpent())
	}
	if g.BudgetExhausted() {
		t.Error("Expected budget not yet exhausted at 500/1000")
	}
}
