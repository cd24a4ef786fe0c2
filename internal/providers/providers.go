// Package providers defines the external collaborator contracts consumed by
// the evaluation pipeline and their HTTP and simulated implementations.
// Every implementation honors context cancellation; callers own timeouts.
package providers

import (
	"context"
	"encoding/json"
	"errors"

	"financefirst/risk-api/internal/domain"
)

// ErrReportNotFound signals that the bureau has no record for a customer.
// This is a valid state, not a failure: scoring proceeds without a snapshot.
var ErrReportNotFound = errors.New("bureau report not found")

// CreditBureauProvider retrieves credit history snapshots.
type CreditBureauProvider interface {
	GetReport(ctx context.Context, customerID string) (*domain.BureauSnapshot, error)
}

// PolicyContextProvider performs similarity search over underwriting policy
// documents.
type PolicyContextProvider interface {
	Query(ctx context.Context, text string, topK int, minSimilarity float64) ([]domain.PolicySnippet, error)
}

// MarketIntelligenceProvider searches external sources for market and fraud
// intelligence documents.
type MarketIntelligenceProvider interface {
	Search(ctx context.Context, query, timeFilter string) ([]domain.MarketDocument, error)
}

// Reasoner generates structured narrative analysis from an assembled prompt.
// The raw response is validated downstream before use.
type Reasoner interface {
	Analyze(ctx context.Context, prompt string) (json.RawMessage, error)
}
