package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financefirst/risk-api/internal/cache"
	"financefirst/risk-api/internal/domain"
	"financefirst/risk-api/internal/providers"
	"financefirst/risk-api/internal/trends"
)

type fakeBureau struct {
	snapshot *domain.BureauSnapshot
	err      error
	calls    int
}

func (f *fakeBureau) GetReport(_ context.Context, _ string) (*domain.BureauSnapshot, error) {
	f.calls++
	return f.snapshot, f.err
}

type fakePolicy struct {
	snippets []domain.PolicySnippet
	err      error
}

func (f *fakePolicy) Query(_ context.Context, _ string, _ int, _ float64) ([]domain.PolicySnippet, error) {
	return f.snippets, f.err
}

type fakeMarket struct {
	docs  []domain.MarketDocument
	err   error
	calls int
}

func (f *fakeMarket) Search(_ context.Context, _, _ string) ([]domain.MarketDocument, error) {
	f.calls++
	return f.docs, f.err
}

func newTestRetriever(t *testing.T, bureau *fakeBureau, policy *fakePolicy, market *fakeMarket, now *time.Time) *Retriever {
	t.Helper()
	clock := func() time.Time { return *now }
	insightCache := cache.NewMemoryWithClock[[]domain.MarketInsight](clock)
	analyzer := trends.NewAnalyzer(cache.NewMemoryWithClock[[]domain.MarketInsight](clock), slog.Default())

	// Typed nil pointers must not leak into the interface fields.
	var (
		bp providers.CreditBureauProvider
		pp providers.PolicyContextProvider
		mp providers.MarketIntelligenceProvider
	)
	if bureau != nil {
		bp = bureau
	}
	if policy != nil {
		pp = policy
	}
	if market != nil {
		mp = market
	}
	return New(bp, pp, mp, analyzer, insightCache, Options{Logger: slog.Default()})
}

func TestFetchBureauDataNotFound(t *testing.T) {
	now := time.Now()
	bureau := &fakeBureau{err: providers.ErrReportNotFound}
	r := newTestRetriever(t, bureau, nil, nil, &now)

	assert.Nil(t, r.FetchBureauData(context.Background(), "cust-x"))
	assert.Equal(t, 1, bureau.calls)
}

func TestFetchBureauDataUnconfigured(t *testing.T) {
	now := time.Now()
	r := newTestRetriever(t, nil, nil, nil, &now)
	assert.Nil(t, r.FetchBureauData(context.Background(), "cust-x"))
}

func TestFetchPolicyContextFloorAndCap(t *testing.T) {
	now := time.Now()
	policy := &fakePolicy{snippets: []domain.PolicySnippet{
		{Content: "low relevance", Score: 0.3},
		{Content: "high relevance", Score: 0.9},
		{Content: "mid relevance", Score: 0.7},
		{Content: "also mid", Score: 0.65},
	}}
	r := newTestRetriever(t, nil, policy, nil, &now)

	got := r.FetchPolicyContext(context.Background(), "underwriting", 2, 0.6)
	require.Len(t, got, 2)
	assert.Equal(t, "high relevance", got[0].Content)
	assert.Equal(t, "mid relevance", got[1].Content)
}

func TestFetchPolicyContextBudgetTruncation(t *testing.T) {
	now := time.Now()
	policy := &fakePolicy{snippets: []domain.PolicySnippet{
		{Content: strings.Repeat("a", 3000), Score: 0.9},
		{Content: strings.Repeat("b", 3000), Score: 0.8},
		{Content: strings.Repeat("c", 3000), Score: 0.7},
	}}
	r := newTestRetriever(t, nil, policy, nil, &now)

	got := r.FetchPolicyContext(context.Background(), "underwriting", 10, 0.5)
	// The 4000-char budget keeps only the highest-scored snippet.
	require.Len(t, got, 1)
	assert.Equal(t, 0.9, got[0].Score)
}

func TestFetchPolicyContextProviderFailure(t *testing.T) {
	now := time.Now()
	policy := &fakePolicy{err: errors.New("search unavailable")}
	r := newTestRetriever(t, nil, policy, nil, &now)

	assert.Empty(t, r.FetchPolicyContext(context.Background(), "underwriting", 3, 0.6))
}

func TestFetchMarketInsightsCaching(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	market := &fakeMarket{docs: []domain.MarketDocument{
		{Title: "Skimming surge", Description: "surge in skimming at point of sale", RelevanceScore: 0.9},
		{Title: "Skimming wave", Description: "card reader fraud surge", RelevanceScore: 0.9},
	}}
	r := newTestRetriever(t, nil, nil, market, &now)
	ctx := context.Background()

	first := r.FetchMarketInsights(ctx, "card fraud", "month")
	require.NotEmpty(t, first)
	require.Equal(t, 1, market.calls)

	// Same normalized query within the TTL: no second provider call,
	// byte-identical payload.
	second := r.FetchMarketInsights(ctx, "  Card   FRAUD ", "month")
	assert.Equal(t, 1, market.calls)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)

	// Past the TTL a fresh provider call is issued.
	now = now.Add(6*time.Hour + time.Minute)
	r.FetchMarketInsights(ctx, "card fraud", "month")
	assert.Equal(t, 2, market.calls)
}

func TestFetchMarketInsightsProviderFailure(t *testing.T) {
	now := time.Now()
	market := &fakeMarket{err: errors.New("search quota exceeded")}
	r := newTestRetriever(t, nil, nil, market, &now)

	assert.Empty(t, r.FetchMarketInsights(context.Background(), "card fraud", "month"))
}
