// Package retrieval coordinates the external context fetches feeding an
// evaluation: bureau snapshots, policy context, and market intelligence.
// Provider failures degrade to empty results with a log line; only the
// caller's own cancellation propagates.
package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"financefirst/risk-api/internal/cache"
	"financefirst/risk-api/internal/domain"
	"financefirst/risk-api/internal/providers"
	"financefirst/risk-api/internal/trends"
)

// Defaults applied when the caller does not configure them.
const (
	DefaultProviderTimeout = 10 * time.Second
	DefaultPolicyBudget    = 4000 // total policy content characters
	insightTTL             = 6 * time.Hour
)

// Retriever fans out to the configured providers. Any provider may be nil,
// meaning that context source is not configured; fetches then return empty
// results immediately.
type Retriever struct {
	bureau   providers.CreditBureauProvider
	policy   providers.PolicyContextProvider
	market   providers.MarketIntelligenceProvider
	analyzer *trends.Analyzer
	insights cache.Cache[[]domain.MarketInsight]
	timeout  time.Duration
	budget   int
	logger   *slog.Logger
}

// Options configure a Retriever beyond its providers.
type Options struct {
	ProviderTimeout time.Duration
	PolicyBudget    int
	Logger          *slog.Logger
}

// New creates a retriever. The insight cache must not be nil; pass a
// cache.NewMemory when no shared backend is available.
func New(bureau providers.CreditBureauProvider, policy providers.PolicyContextProvider, market providers.MarketIntelligenceProvider, analyzer *trends.Analyzer, insights cache.Cache[[]domain.MarketInsight], opts Options) *Retriever {
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = DefaultProviderTimeout
	}
	if opts.PolicyBudget <= 0 {
		opts.PolicyBudget = DefaultPolicyBudget
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Retriever{
		bureau:   bureau,
		policy:   policy,
		market:   market,
		analyzer: analyzer,
		insights: insights,
		timeout:  opts.ProviderTimeout,
		budget:   opts.PolicyBudget,
		logger:   opts.Logger,
	}
}

// FetchBureauData retrieves the customer's credit snapshot. A missing
// record, an unconfigured provider, and a provider failure all yield a nil
// snapshot; scoring treats that as the unknown-applicant state.
func (r *Retriever) FetchBureauData(ctx context.Context, customerID string) *domain.BureauSnapshot {
	if r.bureau == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	snapshot, err := r.bureau.GetReport(ctx, customerID)
	if err != nil {
		if errors.Is(err, providers.ErrReportNotFound) {
			r.logger.Info("no bureau record", "customer_id", customerID)
		} else {
			r.logger.Warn("bureau fetch failed", "customer_id", customerID, "error", err)
		}
		return nil
	}
	return snapshot
}

// FetchPolicyContext runs a similarity search over policy documents,
// re-enforcing the similarity floor and result cap client-side. When the
// combined content would exceed the length budget, the lowest-scored
// snippets are dropped first. Results are not cached; embedding queries
// vary per request.
func (r *Retriever) FetchPolicyContext(ctx context.Context, query string, topK int, minSimilarity float64) []domain.PolicySnippet {
	if r.policy == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	snippets, err := r.policy.Query(ctx, query, topK, minSimilarity)
	if err != nil {
		r.logger.Warn("policy fetch failed", "query", query, "error", err)
		return nil
	}

	filtered := snippets[:0]
	for _, s := range snippets {
		if s.Score >= minSimilarity {
			filtered = append(filtered, s)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Score > filtered[j].Score })
	if topK > 0 && len(filtered) > topK {
		filtered = filtered[:topK]
	}

	total := 0
	for i, s := range filtered {
		total += len(s.Content)
		if total > r.budget {
			r.logger.Debug("policy context truncated", "kept", i, "dropped", len(filtered)-i)
			filtered = filtered[:i]
			break
		}
	}
	return filtered
}

// FetchMarketInsights searches market intelligence and distills it into
// insights, cached for 6 hours per normalized query. Cached entries are
// returned as-is without touching the provider.
func (r *Retriever) FetchMarketInsights(ctx context.Context, query, timeFilter string) []domain.MarketInsight {
	if r.market == nil {
		return nil
	}

	key := "insights:" + normalizeQuery(query)
	if cached, ok := r.insights.Get(ctx, key); ok {
		return cached
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	docs, err := r.market.Search(fetchCtx, query, timeFilter)
	if err != nil {
		r.logger.Warn("market fetch failed", "query", query, "error", err)
		return nil
	}

	insights := r.analyzer.AnalyzeDocuments(ctx, query, timeFilter, docs)
	r.insights.Set(ctx, key, insights, insightTTL)
	return insights
}

// normalizeQuery canonicalizes query text for cache keying.
func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
