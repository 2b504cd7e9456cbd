package panels

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonathan/architect/internal/types"
)

// AdviceCache keeps the first successful advice for each step id. Entries are never replaced.
type AdviceCache struct {
	mu      sync.RWMutex
	entries map[string]*types.StepAdvice
}

// NewAdviceCache creates an empty cache.
func NewAdviceCache() *AdviceCache {
	return &AdviceCache{entries: make(map[string]*types.StepAdvice)}
}

// Get returns the cached advice for stepID.
func (c *AdviceCache) Get(stepID string) (*types.StepAdvice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.entries[stepID]
	return a, ok
}

// Put stores advice unless stepID already has an entry. It returns the entry kept.
func (c *AdviceCache) Put(stepID string, advice *types.StepAdvice) *types.StepAdvice {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[stepID]; ok {
		return existing
	}
	c.entries[stepID] = advice
	return advice
}

// Len returns the number of cached steps.
func (c *AdviceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StepAdvice returns advice for a step, fetching it once in the project's language.
func (s *Service) StepAdvice(ctx context.Context, projectID, stepID string) (*types.StepAdvice, error) {
	if a, ok := s.advice.Get(stepID); ok {
		return a, nil
	}

	p, err := s.projects.Get(projectID)
	if err != nil {
		return nil, err
	}
	i := p.StepIndex(stepID)
	if i < 0 {
		return nil, &InputError{Field: "step", Reason: "not found"}
	}

	projectContext := fmt.Sprintf("%s: %s", p.Name, p.Description)
	advice, err := s.ai.GetStepAdvice(ctx, p.Steps[i].Title, projectContext, p.Language)
	if err != nil {
		s.notes.Error("Could not load advice for " + p.Steps[i].Title)
		return nil, err
	}
	return s.advice.Put(stepID, advice), nil
}
