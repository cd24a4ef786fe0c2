// Package domain contains all core types used across the application.
// Keeping domain types in one place makes the risk model easy to reason about.
package domain

import "time"

// ─── Constants ───────────────────────────────────────────────────────────────

// Risk tiers derived from the overall score. Severity labels for individual
// risk factors use the same literals.
const (
	TierLow      = "LOW"      // score < 25
	TierMedium   = "MEDIUM"   // 25 <= score < 50
	TierHigh     = "HIGH"     // 50 <= score < 75
	TierCritical = "CRITICAL" // score >= 75
)

// Risk factor categories.
const (
	CategoryFinancial   = "FINANCIAL"
	CategoryBehavioral  = "BEHAVIORAL"
	CategoryDemographic = "DEMOGRAPHIC"
	CategoryExternal    = "EXTERNAL"
)

// Payment history ratings reported by credit bureaus.
const (
	PaymentHistoryGood = "GOOD"
	PaymentHistoryFair = "FAIR"
	PaymentHistoryPoor = "POOR"
)

// Credit inquiry types. Only hard inquiries count against the applicant.
const (
	InquiryHard = "HARD"
	InquirySoft = "SOFT"
)

// Evaluation lifecycle states. An evaluation moves strictly forward;
// FAILED is terminal and reachable only before retrieval begins.
const (
	StatusStarted    = "STARTED"
	StatusRetrieving = "RETRIEVING"
	StatusScored     = "SCORED"
	StatusEnriched   = "ENRICHED"
	StatusComplete   = "COMPLETE"
	StatusFailed     = "FAILED"
)

// ─── Evaluation input ─────────────────────────────────────────────────────────

// ApplicantProfile is the structured applicant data submitted with an
// application. CreditScore is the locally declared score and may be zero
// when unknown; bureau data takes precedence during scoring.
type ApplicantProfile struct {
	CustomerID          string  `json:"customer_id"`
	Age                 int     `json:"age,omitempty"`
	AnnualIncome        float64 `json:"annual_income"`
	EmploymentYears     float64 `json:"employment_years"`
	Occupation          string  `json:"occupation,omitempty"`
	State               string  `json:"state,omitempty"` // two-letter US state code
	AddressTenureYears  float64 `json:"address_tenure_years,omitempty"`
	MonthlyDebtPayments float64 `json:"monthly_debt_payments"`
	CreditScore         int     `json:"credit_score,omitempty"`
}

// ApplicationDetails describes what the applicant is asking for.
type ApplicationDetails struct {
	ApplicationID  string  `json:"application_id"`
	ProductType    string  `json:"product_type"` // e.g. "credit_card", "personal_loan"
	RequestedLimit float64 `json:"requested_limit"`
}

// EvaluationRequest is the immutable input to a single evaluation.
type EvaluationRequest struct {
	Applicant   ApplicantProfile   `json:"applicant"`
	Application ApplicationDetails `json:"application"`
}

// ─── Credit bureau data ───────────────────────────────────────────────────────

// BureauAccount is a single tradeline from a bureau report.
type BureauAccount struct {
	OpenedDate    time.Time `json:"opened_date"`
	Delinquencies int       `json:"delinquencies"`
}

// BureauInquiry is a recorded credit inquiry.
type BureauInquiry struct {
	Date time.Time `json:"date"`
	Type string    `json:"type"` // HARD | SOFT
}

// AccountSummary aggregates the bureau's view of the applicant's accounts.
type AccountSummary struct {
	CreditUtilization float64 `json:"credit_utilization"` // 0..1
	PaymentHistory    string  `json:"payment_history"`    // GOOD | FAIR | POOR
}

// BureauSnapshot is third-party credit history for an applicant.
// A nil snapshot is a valid "unknown applicant" state; the scoring engine
// degrades to lower-confidence results rather than failing.
type BureauSnapshot struct {
	CreditScore int             `json:"credit_score"`
	Summary     AccountSummary  `json:"account_summary"`
	Accounts    []BureauAccount `json:"accounts"`
	Inquiries   []BureauInquiry `json:"inquiries"`
}

// ─── Scoring output ───────────────────────────────────────────────────────────

// RiskFactor is a single signal that contributed to the score. Factors are
// created once and never mutated; the factor list is the audit trail of why
// a score is what it is.
type RiskFactor struct {
	Name           string  `json:"name"`     // machine-readable identifier
	Category       string  `json:"category"` // FINANCIAL | BEHAVIORAL | DEMOGRAPHIC | EXTERNAL
	Severity       string  `json:"severity"` // LOW | MEDIUM | HIGH | CRITICAL
	Weight         float64 `json:"weight"`
	Value          any     `json:"value"`
	Description    string  `json:"description"`
	Recommendation string  `json:"recommendation,omitempty"`
}

// Adjustment is a named post-component delta applied to the base score.
type Adjustment struct {
	Name  string  `json:"name"`
	Delta float64 `json:"delta"`
}

// ScoreBreakdown records the five weighted component sub-scores and the
// adjustments that turned the base score into the final score.
type ScoreBreakdown struct {
	BaseScore            float64      `json:"base_score"`
	CreditComponent      float64      `json:"credit_component"`
	FinancialComponent   float64      `json:"financial_component"`
	BehavioralComponent  float64      `json:"behavioral_component"`
	DemographicComponent float64      `json:"demographic_component"`
	ExternalComponent    float64      `json:"external_component"`
	Adjustments          []Adjustment `json:"adjustments"`
	FinalScore           float64      `json:"final_score"`
}

// RiskAssessment is the complete scoring result for one evaluation.
// Created once, immutable thereafter, owned by the orchestrator.
type RiskAssessment struct {
	OverallScore    float64        `json:"overall_score"` // 0..100
	Tier            string         `json:"tier"`          // LOW | MEDIUM | HIGH | CRITICAL
	Confidence      float64        `json:"confidence"`    // 0.1..1.0
	Factors         []RiskFactor   `json:"factors"`
	Breakdown       ScoreBreakdown `json:"breakdown"`
	Recommendations []string       `json:"recommendations"`
	Timestamp       time.Time      `json:"timestamp"`
	ModelVersion    string         `json:"model_version"`
}

// ─── Market intelligence ──────────────────────────────────────────────────────

// MarketDocument is a raw news/web snippet returned by a market
// intelligence provider.
type MarketDocument struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	URL            string    `json:"url,omitempty"`
	Source         string    `json:"source"`
	PublishedDate  time.Time `json:"published_date"`
	RelevanceScore float64   `json:"relevance_score,omitempty"`
}

// FraudTrend is a pattern of suspicious activity synthesized from a batch
// of documents by keyword co-occurrence. Confidence is capped below 1.0
// because it is evidence-count-derived, never certain.
type FraudTrend struct {
	Type                 string   `json:"type"`
	Severity             string   `json:"severity"`
	AffectedDemographics []string `json:"affected_demographics"`
	PreventionStrategies []string `json:"prevention_strategies"`
	ImpactDescription    string   `json:"impact_description"`
	SourceCount          int      `json:"source_count"`
	Confidence           float64  `json:"confidence"` // 0..0.9
}

// MarketInsight is an actionable signal distilled from trend analysis and
// consumed by the scoring engine's external component.
type MarketInsight struct {
	Type       string  `json:"type"`     // fraud_trend | risk_indicator | recommendation
	Category   string  `json:"category"` // trend type or market_risk
	Severity   string  `json:"severity"`
	Title      string  `json:"title"`
	Summary    string  `json:"summary"`
	Confidence float64 `json:"confidence,omitempty"`
	Priority   string  `json:"priority"`
}

// PolicySnippet is a ranked text excerpt from the policy document index.
type PolicySnippet struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

// ─── Reasoner enrichment ──────────────────────────────────────────────────────

// NarrativeFactor is one factor in a reasoner-generated analysis.
type NarrativeFactor struct {
	Factor      string `json:"factor"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// Narrative is the validated structured output of the external reasoner.
// A nil Narrative on an Evaluation means enrichment was unavailable; the
// numeric assessment stands on its own.
type Narrative struct {
	RiskScore       float64           `json:"risk_score"`
	RiskLevel       string            `json:"risk_level"`
	RiskFactors     []NarrativeFactor `json:"risk_factors"`
	ComplianceNotes []string          `json:"compliance_notes"`
	Recommendation  string            `json:"recommendation"`
	ConfidenceScore float64           `json:"confidence_score"`
}

// ─── Stored evaluation ────────────────────────────────────────────────────────

// Evaluation is the canonical record persisted for each completed run:
// the request, its assessment, and optional reasoner narrative.
type Evaluation struct {
	ID         string            `json:"id"`
	CustomerID string            `json:"customer_id"`
	Request    EvaluationRequest `json:"request"`
	Assessment RiskAssessment    `json:"assessment"`
	Narrative  *Narrative        `json:"narrative,omitempty"`
	Status     string            `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ─── Webhooks ─────────────────────────────────────────────────────────────────

// WebhookConfig is a registered callback for real-time alerts when an
// assessment's score meets or exceeds the threshold.
type WebhookConfig struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Threshold float64   `json:"threshold"` // fire when overall_score >= this value
	CreatedAt time.Time `json:"created_at"`
	Active    bool      `json:"active"`
}

// WebhookPayload is the body sent to registered webhook URLs.
type WebhookPayload struct {
	Event       string     `json:"event"` // always "high_risk_assessment"
	TriggeredAt time.Time  `json:"triggered_at"`
	Evaluation  Evaluation `json:"evaluation"`
}

// ─── Reporting ────────────────────────────────────────────────────────────────

// RiskReport is the 24-hour portfolio export for risk operations teams.
type RiskReport struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Period      string        `json:"period"`
	Summary     ReportSummary `json:"summary"`
	TopFactors  []FactorCount `json:"top_factors"`
}

// ReportSummary holds headline metrics for a RiskReport.
type ReportSummary struct {
	TotalEvaluations int     `json:"total_evaluations"`
	CriticalCount    int     `json:"critical_count"`
	HighCount        int     `json:"high_count"`
	MediumCount      int     `json:"medium_count"`
	LowCount         int     `json:"low_count"`
	AvgRiskScore     float64 `json:"avg_risk_score"`
	AvgConfidence    float64 `json:"avg_confidence"`
}

// FactorCount is a recurring risk factor and how often it appeared.
type FactorCount struct {
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

// ─── Model metadata ───────────────────────────────────────────────────────────

// ModelInfo describes the scoring model, exposed on the API for audit.
type ModelInfo struct {
	Version    string             `json:"version"`
	Weights    map[string]float64 `json:"weights"`
	RiskTiers  []string           `json:"risk_tiers"`
	Components int                `json:"components"`
}
