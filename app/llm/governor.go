package llm

import (
	"sync"
	"time"
)

const (
	// windowCapacity bounds how many call timestamps are retained.
	windowCapacity = 100
	windowSpan     = 60 * time.Second
)

// Governor applies advisory backpressure to model calls: a sliding one-minute
// call ceiling plus a daily token budget reset on UTC-day rollover. Callers
// that are refused admission may wait and retry; nothing here blocks.
type Governor struct {
	mu          sync.Mutex
	callCeiling int
	dailyBudget int

	window []time.Time
	spent  int
	day    time.Time

	now func() time.Time
}

func NewGovernor(callsPerMinute, dailyTokenBudget int) *Governor {
	return &Governor{
		callCeiling: callsPerMinute,
		dailyBudget: dailyTokenBudget,
		now:         time.Now,
	}
}

// Admit reports whether another model call may proceed right now. A call
// timestamp is recorded only when admission succeeds; rejection has no side
// effects.
func (g *Governor) Admit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.rollover(now)

	if g.spent >= g.dailyBudget {
		return false
	}

	recent := 0
	cutoff := now.Add(-windowSpan)
	for _, ts := range g.window {
		if ts.After(cutoff) {
			recent++
		}
	}
	if recent >= g.callCeiling {
		return false
	}

	g.window = append(g.window, now)
	if len(g.window) > windowCapacity {
		g.window = g.window[len(g.window)-windowCapacity:]
	}

	return true
}

// RecordUsage adds a completed call's token count to the daily spend.
func (g *Governor) RecordUsage(tokens int) {
	if tokens <= 0 {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollover(g.now())
	g.spent += tokens
}

// BudgetExhausted reports whether the daily token budget is spent. This is
// the fatal path: a request refused for budget is not retried.
func (g *Governor) BudgetExhausted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollover(g.now())
	return g.spent >= g.dailyBudget
}

// TokensSpent returns the current UTC-day token spend.
func (g *Governor) TokensSpent() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rollover(g.now())
	return g.spent
}

// rollover resets the spend counter at the first call after a UTC-day change.
// Caller must hold g.mu.
func (g *Governor) rollover(now time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)
	if !day.Equal(g.day) {
		g.day = day
		g.spent = 0
	}
}
