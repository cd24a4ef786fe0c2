package trends

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"financefirst/risk-api/internal/cache"
	"financefirst/risk-api/internal/domain"
)

func skimmingDocs() []domain.MarketDocument {
	return []domain.MarketDocument{
		{
			Title:          "Card skimming surge hits retail chains",
			Description:    "Investigators report a surge in skimming devices at point of sale terminals",
			Source:         "reuters.com",
			RelevanceScore: 0.9,
		},
		{
			Title:          "ATM fraud surge across the southeast",
			Description:    "Skimming incidents rising sharply according to law enforcement",
			Source:         "bloomberg.com",
			RelevanceScore: 0.85,
		},
		{
			Title:          "New skimming wave",
			Description:    "Banks warn of a surge in compromised card readers",
			Source:         "wsj.com",
			RelevanceScore: 0.8,
		},
	}
}

func TestIdentifyTrendsSkimmingSurge(t *testing.T) {
	trends := IdentifyTrends(skimmingDocs())

	if len(trends) != 1 {
		t.Fatalf("got %d trends, want 1", len(trends))
	}
	trend := trends[0]
	if trend.Type != "credit_card_skimming" {
		t.Errorf("trend type = %s, want credit_card_skimming", trend.Type)
	}
	if trend.Severity != domain.TierHigh {
		t.Errorf("severity = %s, want HIGH", trend.Severity)
	}
	if trend.Confidence != 0.45 {
		t.Errorf("confidence = %.2f, want 0.45", trend.Confidence)
	}
	if trend.SourceCount != 3 {
		t.Errorf("source count = %d, want 3", trend.SourceCount)
	}
}

func TestIdentifyTrendsNoMatches(t *testing.T) {
	docs := []domain.MarketDocument{
		{Title: "Quarterly earnings beat expectations", Description: "Strong retail performance"},
	}
	if trends := IdentifyTrends(docs); len(trends) != 0 {
		t.Errorf("got %d trends from unrelated documents, want 0", len(trends))
	}
}

func TestIdentifyTrendsSeverityAggregation(t *testing.T) {
	// One HIGH-rated document is not enough; two MEDIUM ratings make MEDIUM.
	docs := []domain.MarketDocument{
		{Title: "Phishing concern grows", Description: "Online fraud alert issued by regulators"},
		{Title: "Digital fraud warning", Description: "Consumer groups raise concern over phishing"},
		{Title: "Phishing surge reported", Description: "Single report of increased activity"},
	}
	trends := IdentifyTrends(docs)
	if len(trends) != 1 {
		t.Fatalf("got %d trends, want 1", len(trends))
	}
	if trends[0].Type != "online_fraud" {
		t.Errorf("trend type = %s, want online_fraud", trends[0].Type)
	}
	if trends[0].Severity != domain.TierMedium {
		t.Errorf("severity = %s, want MEDIUM (one HIGH and two MEDIUM ratings)", trends[0].Severity)
	}
}

func TestIdentifyTrendsConfidenceCeiling(t *testing.T) {
	var docs []domain.MarketDocument
	for i := 0; i < 10; i++ {
		docs = append(docs, domain.MarketDocument{
			Title:       "Skimming report",
			Description: "point of sale skimming device found",
		})
	}
	trends := IdentifyTrends(docs)
	if len(trends) != 1 {
		t.Fatalf("got %d trends, want 1", len(trends))
	}
	if trends[0].Confidence != 0.9 {
		t.Errorf("confidence = %.2f, want ceiling 0.9 for 10 sources", trends[0].Confidence)
	}
}

func TestRiskIndicators(t *testing.T) {
	docs := []domain.MarketDocument{
		{Title: "Fraud losses show 40% increase year over year", Description: "Major breach reported at payment processor"},
		{Title: "Emerging fraud tactics", Description: "New regulation proposed to curb losses"},
	}
	indicators := RiskIndicators(docs)

	if len(indicators) == 0 {
		t.Fatal("expected risk indicators from pattern-rich documents")
	}
	if len(indicators) > 10 {
		t.Errorf("got %d indicators, want at most 10", len(indicators))
	}
	seen := map[string]bool{}
	for _, ind := range indicators {
		if seen[ind] {
			t.Errorf("duplicate indicator: %q", ind)
		}
		seen[ind] = true
	}
}

func TestRecommendationsCapAndTail(t *testing.T) {
	trends := []domain.FraudTrend{
		{Type: "credit_card_skimming", Severity: domain.TierHigh},
		{Type: "account_takeover", Severity: domain.TierHigh},
		{Type: "identity_theft", Severity: domain.TierHigh},
	}
	indicators := []string{"Security breach reported: breach"}

	recs := Recommendations(trends, indicators)
	if len(recs) > 8 {
		t.Errorf("got %d recommendations, want at most 8", len(recs))
	}
	seen := map[string]bool{}
	for _, rec := range recs {
		if seen[rec] {
			t.Errorf("duplicate recommendation: %q", rec)
		}
		seen[rec] = true
	}
}

func TestRecommendationsLowSeverityOnlyGeneralTail(t *testing.T) {
	trends := []domain.FraudTrend{{Type: "online_fraud", Severity: domain.TierLow}}
	recs := Recommendations(trends, nil)

	if len(recs) != len(generalRecommendations) {
		t.Fatalf("got %d recommendations, want only the %d general ones", len(recs), len(generalRecommendations))
	}
	for i, rec := range recs {
		if rec != generalRecommendations[i] {
			t.Errorf("recommendation %d = %q, want %q", i, rec, generalRecommendations[i])
		}
	}
}

func TestAnalyzeDocumentsCaching(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	analyzer := NewAnalyzer(cache.NewMemoryWithClock[[]domain.MarketInsight](clock), slog.Default())
	ctx := context.Background()

	countTrends := func(insights []domain.MarketInsight) int {
		n := 0
		for _, insight := range insights {
			if insight.Type == "fraud_trend" {
				n++
			}
		}
		return n
	}

	first := analyzer.AnalyzeDocuments(ctx, "card fraud", "month", skimmingDocs())
	if countTrends(first) == 0 {
		t.Fatal("expected trend insights from skimming documents")
	}

	// Within the TTL an empty batch still returns the cached result.
	second := analyzer.AnalyzeDocuments(ctx, "card fraud", "month", nil)
	if len(second) != len(first) {
		t.Fatalf("cached call returned %d insights, want %d", len(second), len(first))
	}

	// Past the TTL the empty batch is actually analyzed again.
	now = now.Add(CacheTTL + time.Minute)
	third := analyzer.AnalyzeDocuments(ctx, "card fraud", "month", nil)
	if countTrends(third) != 0 {
		t.Errorf("post-expiry call produced %d trend insights, want 0 for empty batch", countTrends(third))
	}
}

func TestAnalyzeDocumentsRelevanceFilter(t *testing.T) {
	analyzer := NewAnalyzer(cache.NewMemory[[]domain.MarketInsight](), slog.Default())

	// Explicitly low relevance keeps the document out of trend synthesis.
	docs := []domain.MarketDocument{
		{Title: "Skimming surge", Description: "skimming surge", RelevanceScore: 0.2},
		{Title: "Skimming surge", Description: "skimming surge", RelevanceScore: 0.1},
	}
	insights := analyzer.AnalyzeDocuments(context.Background(), "irrelevant", "week", docs)
	for _, insight := range insights {
		if insight.Type == "fraud_trend" {
			t.Errorf("low-relevance documents produced trend insight %q", insight.Category)
		}
	}
}

func TestRelevanceHeuristic(t *testing.T) {
	authoritative := domain.MarketDocument{
		Title:       "Credit card fraud spike",
		Description: "identity theft ring dismantled",
		URL:         "https://www.ftc.gov/news/fraud-alert",
		PublishedDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	if got := relevance(authoritative); got <= relevanceFloor {
		t.Errorf("relevance = %.2f for authoritative fraud article, want > %.2f", got, relevanceFloor)
	}

	unrelated := domain.MarketDocument{
		Title:       "Local sports roundup",
		Description: "Weekend scores",
		URL:         "https://example.com/sports",
	}
	if got := relevance(unrelated); got > relevanceFloor {
		t.Errorf("relevance = %.2f for unrelated article, want <= %.2f", got, relevanceFloor)
	}
}
