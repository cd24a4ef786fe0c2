// Package store persists completed evaluations and webhook subscriptions.
// Two backends: an in-memory store for development and tests, and a
// Postgres store for durable deployments.
package store

import (
	"context"
	"errors"
	"time"

	"financefirst/risk-api/internal/domain"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// EvaluationStore is the persistence contract consumed by the orchestrator
// and the HTTP layer.
type EvaluationStore interface {
	SaveEvaluation(ctx context.Context, eval *domain.Evaluation) error
	GetEvaluation(ctx context.Context, id string) (*domain.Evaluation, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Evaluation, error)
	ListSince(ctx context.Context, since time.Time) ([]*domain.Evaluation, error)

	SaveWebhook(ctx context.Context, hook *domain.WebhookConfig) error
	ListWebhooks(ctx context.Context) ([]*domain.WebhookConfig, error)
	DeleteWebhook(ctx context.Context, id string) error
}
