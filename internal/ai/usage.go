package ai

import (
	"fmt"
	"sync"
)

// UsageTracker checks and records model-token spend per university.
type UsageTracker interface {
	// Allow returns true if the university has budget remaining.
	Allow(universityID string) (bool, error)
	// Record adds token usage for a university.
	Record(universityID string, tokens int) error
	// Usage returns current usage and budget for a university.
	Usage(universityID string) (used int64, budget int64, err error)
}

// InMemoryUsage tracks token spend in memory. A university with no budget
// set is unlimited.
type InMemoryUsage struct {
	mu      sync.RWMutex
	budgets map[string]int64
	usage   map[string]int64
}

// NewInMemoryUsage creates a new in-memory usage tracker.
func NewInMemoryUsage() *InMemoryUsage {
	return &InMemoryUsage{
		budgets: make(map[string]int64),
		usage:   make(map[string]int64),
	}
}

// SetBudget sets the token budget for a university.
func (u *InMemoryUsage) SetBudget(universityID string, tokens int64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.budgets[universityID] = tokens
}

func (u *InMemoryUsage) Allow(universityID string) (bool, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	budget, hasBudget := u.budgets[universityID]
	if !hasBudget {
		return true, nil
	}
	return u.usage[universityID] < budget, nil
}

func (u *InMemoryUsage) Record(universityID string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.usage[universityID] += int64(tokens)
	return nil
}

func (u *InMemoryUsage) Usage(universityID string) (int64, int64, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.usage[universityID], u.budgets[universityID], nil
}
