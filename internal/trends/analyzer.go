// Package trends synthesizes fraud trend intelligence from batches of
// market documents: keyword-driven trend detection, pattern-based risk
// indicators, and mitigation recommendations. Analysis is pure text
// processing; the only state is a TTL cache of composed results.
package trends

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"financefirst/risk-api/internal/cache"
	"financefirst/risk-api/internal/domain"
)

// CacheTTL bounds how long a composed analysis stays valid for a given
// (query, time filter) pair.
const CacheTTL = 6 * time.Hour

// relevanceFloor gates which documents enter the trend synthesis pool.
const relevanceFloor = 0.6

// trendCategory pairs a trend type with the keywords that signal it.
// Held as an ordered slice so analysis output is deterministic.
type trendCategory struct {
	name     string
	keywords []string
}

var trendCategories = []trendCategory{
	{"credit_card_skimming", []string{"skimming", "card reader", "atm fraud", "point of sale"}},
	{"identity_theft", []string{"identity theft", "social security", "personal information", "data breach"}},
	{"synthetic_fraud", []string{"synthetic identity", "fake identity", "identity creation"}},
	{"account_takeover", []string{"account takeover", "credential stuffing", "password breach"}},
	{"online_fraud", []string{"online fraud", "e-commerce fraud", "digital fraud", "phishing"}},
}

var (
	highSeverityTerms   = []string{"surge", "increase", "rising", "epidemic"}
	mediumSeverityTerms = []string{"concern", "alert", "warning"}
)

// riskPattern maps a compiled indicator pattern to its description prefix.
type riskPattern struct {
	re          *regexp.Regexp
	description string
}

var riskPatterns = []riskPattern{
	{regexp.MustCompile(`(?i)(\d+%)\s+(increase|rise|surge)`), "Statistical increase detected"},
	{regexp.MustCompile(`(?i)(new|emerging|latest)\s+fraud`), "Emerging fraud pattern identified"},
	{regexp.MustCompile(`(?i)(breach|hack|compromise)`), "Security breach reported"},
	{regexp.MustCompile(`(?i)(regulation|compliance|penalty)`), "Regulatory change detected"},
	{regexp.MustCompile(`(?i)(economic|recession|inflation)`), "Economic risk factor"},
}

var demographicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(young|elderly|senior|millennial|gen z|boomer)`),
	regexp.MustCompile(`(?i)(high income|low income|middle class)`),
	regexp.MustCompile(`(?i)(urban|rural|suburban)`),
	regexp.MustCompile(`(?i)(small business|enterprise|consumer)`),
}

var standardPreventionStrategies = []string{
	"Enhanced identity verification procedures",
	"Real-time transaction monitoring",
	"Multi-factor authentication implementation",
}

var generalRecommendations = []string{
	"Conduct regular review of fraud detection models against current market trends",
	"Consider implementing real-time fraud scoring based on current threat landscape",
	"Maintain ongoing monitoring of fraud trend evolution",
}

// Analyzer synthesizes trends from market documents. Safe for concurrent
// use; overlapping evaluations share the cache.
type Analyzer struct {
	cache  cache.Cache[[]domain.MarketInsight]
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer backed by the given insight cache.
func NewAnalyzer(c cache.Cache[[]domain.MarketInsight], logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cache: c, logger: logger}
}

// ─── Analysis ─────────────────────────────────────────────────────────────────

// AnalyzeDocuments runs the full pipeline over a document batch: relevance
// filtering, trend identification, indicator extraction, and recommendation
// generation, composed into a flat insight list. Results are cached for 6
// hours per (query, timeFilter) pair.
func (a *Analyzer) AnalyzeDocuments(ctx context.Context, query, timeFilter string, docs []domain.MarketDocument) []domain.MarketInsight {
	key := analysisKey(query, timeFilter)
	if cached, ok := a.cache.Get(ctx, key); ok {
		a.logger.Debug("trend analysis cache hit", "query", query, "time_filter", timeFilter)
		return cached
	}

	relevant := make([]domain.MarketDocument, 0, len(docs))
	for _, doc := range docs {
		if relevance(doc) > relevanceFloor {
			relevant = append(relevant, doc)
		}
	}

	trends := IdentifyTrends(relevant)
	indicators := RiskIndicators(relevant)
	recs := Recommendations(trends, indicators)

	insights := composeInsights(trends, indicators, recs)

	a.cache.Set(ctx, key, insights, CacheTTL)
	a.logger.Info("trend analysis complete",
		"query", query,
		"documents", len(docs),
		"relevant", len(relevant),
		"trends", len(trends),
		"insights", len(insights))
	return insights
}

// IdentifyTrends detects fraud trend categories across a document batch.
// A category produces a trend only when at least one document matches its
// keyword list; severity aggregates per-document severity ratings.
func IdentifyTrends(docs []domain.MarketDocument) []domain.FraudTrend {
	var trends []domain.FraudTrend

	for _, category := range trendCategories {
		var matching []domain.MarketDocument
		severityCounts := map[string]int{}

		for _, doc := range docs {
			content := strings.ToLower(doc.Title + " " + doc.Description)
			matched := false
			for _, keyword := range category.keywords {
				if strings.Contains(content, keyword) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			matching = append(matching, doc)
			severityCounts[documentSeverity(content)]++
		}

		if len(matching) == 0 {
			continue
		}

		severity := domain.TierLow
		switch {
		case severityCounts[domain.TierHigh] >= 2:
			severity = domain.TierHigh
		case severityCounts[domain.TierMedium] >= 2:
			severity = domain.TierMedium
		}

		trends = append(trends, domain.FraudTrend{
			Type:                 category.name,
			Severity:             severity,
			AffectedDemographics: extractDemographics(matching),
			PreventionStrategies: standardPreventionStrategies,
			ImpactDescription:    summarizeImpact(matching),
			SourceCount:          len(matching),
			Confidence:           minFloat(0.9, float64(len(matching))*0.15),
		})
	}

	return trends
}

// documentSeverity rates a single document by escalation vocabulary.
func documentSeverity(content string) string {
	for _, term := range highSeverityTerms {
		if strings.Contains(content, term) {
			return domain.TierHigh
		}
	}
	for _, term := range mediumSeverityTerms {
		if strings.Contains(content, term) {
			return domain.TierMedium
		}
	}
	return domain.TierLow
}

// RiskIndicators extracts deduplicated indicator strings from pattern
// matches across the batch, capped at 10.
func RiskIndicators(docs []domain.MarketDocument) []string {
	var indicators []string
	seen := map[string]bool{}

	for _, doc := range docs {
		content := doc.Title + " " + doc.Description
		for _, pattern := range riskPatterns {
			match := pattern.re.FindStringSubmatch(content)
			if match == nil {
				continue
			}
			indicator := fmt.Sprintf("%s: %s", pattern.description, strings.Join(match[1:], " "))
			if seen[indicator] {
				continue
			}
			seen[indicator] = true
			indicators = append(indicators, indicator)
			if len(indicators) == 10 {
				return indicators
			}
		}
	}
	return indicators
}

// Recommendations generates mitigation guidance from trends and indicators.
// Deduplicated preserving first-seen order, capped at 8 including the fixed
// general tail.
func Recommendations(trends []domain.FraudTrend, indicators []string) []string {
	var recs []string

	for _, trend := range trends {
		if trend.Severity != domain.TierHigh && trend.Severity != domain.TierCritical {
			continue
		}
		label := strings.ReplaceAll(trend.Type, "_", " ")
		recs = append(recs,
			fmt.Sprintf("Implement enhanced monitoring for %s patterns", label),
			fmt.Sprintf("Review and update fraud detection rules for %s", label),
			fmt.Sprintf("Consider additional verification steps for applications matching %s risk profile", label),
		)
	}

	highCount := 0
	for _, trend := range trends {
		if trend.Severity == domain.TierHigh {
			highCount++
		}
	}
	if highCount >= 2 {
		recs = append(recs, "Consider implementing temporary additional security measures due to elevated fraud environment")
	}

	for _, indicator := range indicators {
		lower := strings.ToLower(indicator)
		if strings.Contains(lower, "breach") {
			recs = append(recs, "Review customer data sources for potential compromise")
			break
		}
	}
	for _, indicator := range indicators {
		lower := strings.ToLower(indicator)
		if strings.Contains(lower, "regulation") {
			recs = append(recs, "Review compliance procedures for recent regulatory changes")
			break
		}
	}

	recs = append(recs, generalRecommendations...)

	seen := map[string]bool{}
	deduped := recs[:0]
	for _, rec := range recs {
		if seen[rec] {
			continue
		}
		seen[rec] = true
		deduped = append(deduped, rec)
		if len(deduped) == 8 {
			break
		}
	}
	return deduped
}

// ─── Relevance ────────────────────────────────────────────────────────────────

var (
	titleKeywords       = []string{"fraud", "credit", "security", "breach"}
	descriptionKeywords = []string{"fraud", "credit card", "identity", "theft"}
	majorNewsDomains    = []string{"reuters.com", "bloomberg.com", "wsj.com", "cnn.com"}
	authorityDomains    = []string{".gov", ".edu", "federalreserve"}
)

// relevance scores a document for trend synthesis. Provider-supplied scores
// take precedence; otherwise a keyword, source-authority, and recency
// heuristic applies.
func relevance(doc domain.MarketDocument) float64 {
	if doc.RelevanceScore > 0 {
		return doc.RelevanceScore
	}

	score := 0.0
	title := strings.ToLower(doc.Title)
	for _, kw := range titleKeywords {
		if strings.Contains(title, kw) {
			score += 0.3
			break
		}
	}
	description := strings.ToLower(doc.Description)
	for _, kw := range descriptionKeywords {
		if strings.Contains(description, kw) {
			score += 0.2
			break
		}
	}
	url := strings.ToLower(doc.URL)
	switch {
	case containsAny(url, authorityDomains):
		score += 0.3
	case containsAny(url, majorNewsDomains):
		score += 0.2
	}
	if !doc.PublishedDate.IsZero() {
		score += 0.1
	}
	return minFloat(1.0, score)
}

// ─── Composition ──────────────────────────────────────────────────────────────

func composeInsights(trends []domain.FraudTrend, indicators, recs []string) []domain.MarketInsight {
	insights := make([]domain.MarketInsight, 0, len(trends)+len(indicators)+len(recs))

	for _, trend := range trends {
		insights = append(insights, domain.MarketInsight{
			Type:       "fraud_trend",
			Category:   trend.Type,
			Severity:   trend.Severity,
			Title:      titleLabel(trend.Type),
			Summary:    trend.ImpactDescription,
			Confidence: trend.Confidence,
			Priority:   priorityFor(trend.Severity),
		})
	}
	for _, indicator := range indicators {
		insights = append(insights, domain.MarketInsight{
			Type:     "risk_indicator",
			Category: "market_risk",
			Severity: domain.TierMedium,
			Title:    "Market risk indicator",
			Summary:  indicator,
			Priority: priorityFor(domain.TierMedium),
		})
	}
	for _, rec := range recs {
		insights = append(insights, domain.MarketInsight{
			Type:     "recommendation",
			Category: "mitigation",
			Severity: domain.TierLow,
			Title:    "Recommended action",
			Summary:  rec,
			Priority: priorityFor(domain.TierLow),
		})
	}

	// Highest-impact insights surface first; composition order breaks ties.
	sort.SliceStable(insights, func(i, j int) bool {
		return severityRank(insights[i].Severity) > severityRank(insights[j].Severity)
	})
	return insights
}

func priorityFor(severity string) string {
	switch severity {
	case domain.TierCritical, domain.TierHigh:
		return "immediate"
	case domain.TierMedium:
		return "elevated"
	default:
		return "standard"
	}
}

func severityRank(severity string) int {
	switch severity {
	case domain.TierCritical:
		return 3
	case domain.TierHigh:
		return 2
	case domain.TierMedium:
		return 1
	default:
		return 0
	}
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func extractDemographics(docs []domain.MarketDocument) []string {
	var demographics []string
	seen := map[string]bool{}
	for _, doc := range docs {
		content := doc.Title + " " + doc.Description
		for _, pattern := range demographicPatterns {
			for _, match := range pattern.FindAllString(content, -1) {
				normalized := strings.ToLower(match)
				if seen[normalized] {
					continue
				}
				seen[normalized] = true
				demographics = append(demographics, normalized)
				if len(demographics) == 5 {
					return demographics
				}
			}
		}
	}
	return demographics
}

func summarizeImpact(docs []domain.MarketDocument) string {
	var impacts []string
	seen := map[string]bool{}
	add := func(impact string) {
		if !seen[impact] {
			seen[impact] = true
			impacts = append(impacts, impact)
		}
	}
	for _, doc := range docs {
		content := strings.ToLower(doc.Title + " " + doc.Description)
		if strings.Contains(content, "million") || strings.Contains(content, "billion") || strings.Contains(content, "widespread") {
			add("significant financial impact")
		}
		if strings.Contains(content, "consumer") || strings.Contains(content, "customer") || strings.Contains(content, "victim") {
			add("consumer impact")
		}
		if strings.Contains(content, "bank") || strings.Contains(content, "financial institution") {
			add("institutional impact")
		}
	}
	if len(impacts) == 0 {
		return "Emerging trend requiring monitoring and assessment"
	}
	return fmt.Sprintf("Trend shows %s based on recent reports", strings.Join(impacts, ", "))
}

func analysisKey(query, timeFilter string) string {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(query))))
	h.Write([]byte{0})
	h.Write([]byte(timeFilter))
	return fmt.Sprintf("trends:%x", h.Sum64())
}

// titleLabel turns a snake_case trend type into a display title.
func titleLabel(trendType string) string {
	words := strings.Split(trendType, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
