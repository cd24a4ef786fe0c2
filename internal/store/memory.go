package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"financefirst/risk-api/internal/domain"
)

// Memory is a thread-safe in-memory EvaluationStore. The byCustomer index
// gives O(1) customer lookups; time-range filtering is a linear scan over a
// typically small slice. Suitable for development and small deployments; a
// durable deployment uses the Postgres store.
type Memory struct {
	mu sync.RWMutex

	evaluations map[string]*domain.Evaluation
	webhooks    map[string]*domain.WebhookConfig

	// Secondary index: customer ID → evaluation IDs in insertion order.
	byCustomer map[string][]string
}

// NewMemory creates an empty, ready-to-use store.
func NewMemory() *Memory {
	return &Memory{
		evaluations: make(map[string]*domain.Evaluation),
		webhooks:    make(map[string]*domain.WebhookConfig),
		byCustomer:  make(map[string][]string),
	}
}

// ─── Evaluations ──────────────────────────────────────────────────────────────

// SaveEvaluation persists an evaluation and updates the customer index.
// Returns ErrDuplicate if the ID already exists.
func (s *Memory) SaveEvaluation(_ context.Context, eval *domain.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.evaluations[eval.ID]; exists {
		return ErrDuplicate
	}
	s.evaluations[eval.ID] = eval
	s.byCustomer[eval.CustomerID] = append(s.byCustomer[eval.CustomerID], eval.ID)
	return nil
}

// GetEvaluation retrieves a single evaluation by ID.
func (s *Memory) GetEvaluation(_ context.Context, id string) (*domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	eval, ok := s.evaluations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return eval, nil
}

// ListByCustomer returns a customer's evaluations, newest first.
func (s *Memory) ListByCustomer(_ context.Context, customerID string) ([]*domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byCustomer[customerID]
	result := make([]*domain.Evaluation, 0, len(ids))
	for _, id := range ids {
		if eval, ok := s.evaluations[id]; ok {
			result = append(result, eval)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// ListSince returns every evaluation created at or after `since`.
func (s *Memory) ListSince(_ context.Context, since time.Time) ([]*domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Evaluation
	for _, eval := range s.evaluations {
		if !eval.CreatedAt.Before(since) {
			result = append(result, eval)
		}
	}
	return result, nil
}

// ─── Webhooks ─────────────────────────────────────────────────────────────────

// SaveWebhook upserts a webhook subscription.
func (s *Memory) SaveWebhook(_ context.Context, hook *domain.WebhookConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.webhooks[hook.ID] = hook
	return nil
}

// ListWebhooks returns all registered webhooks.
func (s *Memory) ListWebhooks(_ context.Context) ([]*domain.WebhookConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.WebhookConfig, 0, len(s.webhooks))
	for _, hook := range s.webhooks {
		result = append(result, hook)
	}
	return result, nil
}

// DeleteWebhook removes a webhook by ID.
func (s *Memory) DeleteWebhook(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.webhooks[id]; !exists {
		return ErrNotFound
	}
	delete(s.webhooks, id)
	return nil
}
