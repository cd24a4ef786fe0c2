// Package scoring implements the multi-factor credit risk scoring engine.
//
// Architecture:
//   The engine is pure computation — no I/O, no external calls. Given the
//   same request, bureau snapshot, and market insights, it always produces
//   the same assessment (excluding the timestamp). Missing optional inputs
//   degrade to flat component defaults and lower confidence; Score never
//   returns an error.
//
// Scoring philosophy:
//   Five weighted components (credit 0.35, financial 0.25, behavioral 0.20,
//   demographic 0.10, external 0.10) produce a base score, then ordered
//   adjustments scale it up for first-time applicants, outsized limit
//   requests, and clusters of severe factors. The final score is clamped to
//   [0, 100] and mapped onto four tiers with exact boundaries: 75 is
//   CRITICAL, 74.999 is HIGH.
package scoring

import (
	"fmt"
	"strings"
	"time"

	"financefirst/risk-api/internal/domain"
)

// ModelVersion identifies the scoring model revision recorded on every
// assessment.
const ModelVersion = "1.0.0"

// Component weights. These must sum to 1.0 exactly.
const (
	weightCredit      = 0.35
	weightFinancial   = 0.25
	weightBehavioral  = 0.20
	weightDemographic = 0.10
	weightExternal    = 0.10
)

// Tier thresholds. Boundary values belong to the higher tier.
const (
	thresholdCritical = 75.0
	thresholdHigh     = 50.0
	thresholdMedium   = 25.0
)

// Flat component defaults used when optional data is absent. The weighted
// sum is intentionally not renormalized over available components; reduced
// confidence is the mechanism signaling the gap.
const (
	defaultBehavioralScore = 25.0
	defaultExternalScore   = 15.0
)

// Engine is the stateless risk scoring engine. The injected clock only
// affects recency windows (inquiries, account openings) and the assessment
// timestamp, never the arithmetic.
type Engine struct {
	now func() time.Time
}

// New creates a scoring engine using the wall clock.
func New() *Engine {
	return &Engine{now: time.Now}
}

// NewWithClock creates an engine with a fixed clock, for tests.
func NewWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// ─── Public API ───────────────────────────────────────────────────────────────

// Score produces a complete risk assessment for an application.
// Bureau and market may be nil/empty; the affected components fall back to
// flat defaults and the confidence estimate drops accordingly.
func (e *Engine) Score(req *domain.EvaluationRequest, bureau *domain.BureauSnapshot, market []domain.MarketInsight) domain.RiskAssessment {
	var factors []domain.RiskFactor

	credit, creditFactors := e.creditComponent(req, bureau)
	factors = append(factors, creditFactors...)

	financial, financialFactors := e.financialComponent(req)
	factors = append(factors, financialFactors...)

	behavioral, behavioralFactors := e.behavioralComponent(bureau)
	factors = append(factors, behavioralFactors...)

	demographic, demographicFactors := e.demographicComponent(req)
	factors = append(factors, demographicFactors...)

	external, externalFactors := e.externalComponent(req, market)
	factors = append(factors, externalFactors...)

	base := credit*weightCredit +
		financial*weightFinancial +
		behavioral*weightBehavioral +
		demographic*weightDemographic +
		external*weightExternal

	final, adjustments := applyAdjustments(base, factors, req, bureau)
	tier := TierForScore(final)
	confidence := e.confidence(req, bureau, factors)

	return domain.RiskAssessment{
		OverallScore: final,
		Tier:         tier,
		Confidence:   confidence,
		Factors:      factors,
		Breakdown: domain.ScoreBreakdown{
			BaseScore:            base,
			CreditComponent:      credit,
			FinancialComponent:   financial,
			BehavioralComponent:  behavioral,
			DemographicComponent: demographic,
			ExternalComponent:    external,
			Adjustments:          adjustments,
			FinalScore:           final,
		},
		Recommendations: recommendations(tier, factors),
		Timestamp:       e.now().UTC(),
		ModelVersion:    ModelVersion,
	}
}

// TierForScore maps a numeric score onto a risk tier.
// Boundary values belong to the higher tier: 75.0 is CRITICAL, 50.0 is HIGH.
func TierForScore(score float64) string {
	switch {
	case score >= thresholdCritical:
		return domain.TierCritical
	case score >= thresholdHigh:
		return domain.TierHigh
	case score >= thresholdMedium:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}

// ModelInfo returns metadata about the scoring model for the audit endpoint.
func (e *Engine) ModelInfo() domain.ModelInfo {
	weights := map[string]float64{
		"credit_score":        weightCredit,
		"financial_stability": weightFinancial,
		"behavioral_patterns": weightBehavioral,
		"demographic_factors": weightDemographic,
		"external_factors":    weightExternal,
	}
	return domain.ModelInfo{
		Version:    ModelVersion,
		Weights:    weights,
		RiskTiers:  []string{domain.TierLow, domain.TierMedium, domain.TierHigh, domain.TierCritical},
		Components: len(weights),
	}
}

// ─── Component 1: credit score (weight 0.35) ─────────────────────────────────

// creditBand maps an inclusive score range to its base risk and multiplier.
type creditBand struct {
	min, max   int
	baseRisk   float64
	multiplier float64
}

var creditBands = []creditBand{
	{800, 850, 5, 0.5},
	{750, 799, 10, 0.7},
	{700, 749, 20, 1.0},
	{650, 699, 35, 1.3},
	{600, 649, 50, 1.6},
	{550, 599, 70, 2.0},
	{300, 549, 85, 2.5},
}

func (e *Engine) creditComponent(req *domain.EvaluationRequest, bureau *domain.BureauSnapshot) (float64, []domain.RiskFactor) {
	var factors []domain.RiskFactor

	creditScore := knownCreditScore(req, bureau)

	// Out-of-band scores (including 0 = unknown) default to medium risk.
	baseRisk, multiplier := 50.0, 1.0
	for _, band := range creditBands {
		if creditScore >= band.min && creditScore <= band.max {
			baseRisk = band.baseRisk
			multiplier = band.multiplier
			break
		}
	}

	var severity, description, recommendation string
	switch {
	case creditScore < 650:
		severity = domain.TierHigh
		description = fmt.Sprintf("Credit score of %d indicates elevated credit risk", creditScore)
		recommendation = "Consider secured credit products or co-signer requirements"
	case creditScore < 700:
		severity = domain.TierMedium
		description = fmt.Sprintf("Credit score of %d indicates moderate credit risk", creditScore)
		recommendation = "Standard underwriting with close monitoring"
	default:
		severity = domain.TierLow
		description = fmt.Sprintf("Credit score of %d indicates low credit risk", creditScore)
		recommendation = "Eligible for premium credit products"
	}
	factors = append(factors, domain.RiskFactor{
		Name:           "credit_score",
		Category:       domain.CategoryFinancial,
		Severity:       severity,
		Weight:         weightCredit,
		Value:          creditScore,
		Description:    description,
		Recommendation: recommendation,
	})

	if bureau != nil {
		if ph := bureau.Summary.PaymentHistory; ph == domain.PaymentHistoryPoor || ph == domain.PaymentHistoryFair {
			sev := domain.TierMedium
			delta := 5.0
			if ph == domain.PaymentHistoryPoor {
				sev = domain.TierHigh
				delta = 10.0
			}
			factors = append(factors, domain.RiskFactor{
				Name:           "payment_history",
				Category:       domain.CategoryBehavioral,
				Severity:       sev,
				Weight:         0.15,
				Value:          ph,
				Description:    fmt.Sprintf("Payment history rated as %s", strings.ToLower(ph)),
				Recommendation: "Require additional verification or monitoring",
			})
			baseRisk += delta
		}

		if util := bureau.Summary.CreditUtilization; util > 0.80 {
			factors = append(factors, domain.RiskFactor{
				Name:           "high_credit_utilization",
				Category:       domain.CategoryBehavioral,
				Severity:       domain.TierHigh,
				Weight:         0.10,
				Value:          util,
				Description:    fmt.Sprintf("High credit utilization at %.1f%%", util*100),
				Recommendation: "Monitor spending patterns closely",
			})
			baseRisk += 8
		}
	}

	return baseRisk * multiplier, factors
}

// knownCreditScore resolves the best available credit score: bureau-reported
// takes precedence over applicant-declared, 0 if neither is known.
func knownCreditScore(req *domain.EvaluationRequest, bureau *domain.BureauSnapshot) int {
	if bureau != nil && bureau.CreditScore > 0 {
		return bureau.CreditScore
	}
	return req.Applicant.CreditScore
}

// ─── Component 2: financial stability (weight 0.25) ──────────────────────────

// DTI classification thresholds.
const (
	dtiExcellent  = 0.20
	dtiGood       = 0.30
	dtiAcceptable = 0.40
	dtiHigh       = 0.50
)

// industryMultipliers scale the financial component for occupations in
// industries with volatile employment. Values below 1.0 reduce risk but do
// not emit a factor.
var industryMultipliers = map[string]float64{
	"hospitality": 1.4,
	"retail":      1.2,
	"technology":  0.9,
	"healthcare":  0.8,
	"government":  0.7,
	"education":   0.8,
}

func (e *Engine) financialComponent(req *domain.EvaluationRequest) (float64, []domain.RiskFactor) {
	var factors []domain.RiskFactor
	base := 30.0

	applicant := req.Applicant
	dti := debtToIncome(applicant.MonthlyDebtPayments, applicant.AnnualIncome)

	var severity, description, recommendation string
	switch {
	case dti > dtiHigh:
		severity = domain.TierHigh
		description = fmt.Sprintf("High debt-to-income ratio at %.1f%%", dti*100)
		recommendation = "Require debt consolidation or co-signer"
		base += 20
	case dti > dtiAcceptable:
		severity = domain.TierMedium
		description = fmt.Sprintf("Elevated debt-to-income ratio at %.1f%%", dti*100)
		recommendation = "Lower credit limits and close monitoring"
		base += 10
	case dti > dtiGood:
		severity = domain.TierLow
		description = fmt.Sprintf("Acceptable debt-to-income ratio at %.1f%%", dti*100)
		recommendation = "Standard underwriting acceptable"
		base -= 5
	default:
		severity = domain.TierLow
		description = fmt.Sprintf("Excellent debt-to-income ratio at %.1f%%", dti*100)
		recommendation = "Qualified for premium products"
		base -= 15
	}
	factors = append(factors, domain.RiskFactor{
		Name:           "debt_to_income_ratio",
		Category:       domain.CategoryFinancial,
		Severity:       severity,
		Weight:         0.20,
		Value:          dti,
		Description:    description,
		Recommendation: recommendation,
	})

	switch {
	case applicant.AnnualIncome < 25000:
		factors = append(factors, domain.RiskFactor{
			Name:           "low_income",
			Category:       domain.CategoryFinancial,
			Severity:       domain.TierHigh,
			Weight:         0.15,
			Value:          applicant.AnnualIncome,
			Description:    fmt.Sprintf("Low annual income of $%.0f", applicant.AnnualIncome),
			Recommendation: "Consider secured products or lower limits",
		})
		base += 15
	case applicant.AnnualIncome < 40000:
		factors = append(factors, domain.RiskFactor{
			Name:           "moderate_income",
			Category:       domain.CategoryFinancial,
			Severity:       domain.TierMedium,
			Weight:         0.10,
			Value:          applicant.AnnualIncome,
			Description:    fmt.Sprintf("Moderate annual income of $%.0f", applicant.AnnualIncome),
			Recommendation: "Standard underwriting with income verification",
		})
		base += 5
	}

	switch {
	case applicant.EmploymentYears < 1:
		factors = append(factors, domain.RiskFactor{
			Name:           "short_employment",
			Category:       domain.CategoryFinancial,
			Severity:       domain.TierHigh,
			Weight:         0.10,
			Value:          applicant.EmploymentYears,
			Description:    fmt.Sprintf("Short employment history: %.1f years", applicant.EmploymentYears),
			Recommendation: "Require additional income verification",
		})
		base += 10
	case applicant.EmploymentYears < 2:
		factors = append(factors, domain.RiskFactor{
			Name:           "recent_employment",
			Category:       domain.CategoryFinancial,
			Severity:       domain.TierMedium,
			Weight:         0.08,
			Value:          applicant.EmploymentYears,
			Description:    fmt.Sprintf("Recent employment history: %.1f years", applicant.EmploymentYears),
			Recommendation: "Monitor for income stability",
		})
		base += 5
	}

	if multiplier, known := industryMultipliers[strings.ToLower(applicant.Occupation)]; known {
		if multiplier > 1.0 {
			factors = append(factors, domain.RiskFactor{
				Name:           "high_risk_occupation",
				Category:       domain.CategoryDemographic,
				Severity:       domain.TierMedium,
				Weight:         0.08,
				Value:          applicant.Occupation,
				Description:    fmt.Sprintf("Higher risk occupation: %s", applicant.Occupation),
				Recommendation: "Consider industry-specific risk factors",
			})
			base *= multiplier
		}
	}

	return clamp(base, 0, 100), factors
}

// debtToIncome computes the DTI ratio, defaulting to the worst case (1.0)
// when income is zero so the division can never blow up.
func debtToIncome(monthlyDebt, annualIncome float64) float64 {
	if annualIncome <= 0 {
		return 1.0
	}
	return monthlyDebt / (annualIncome / 12)
}

// ─── Component 3: behavioral patterns (weight 0.20) ──────────────────────────

// Behavioral thresholds over bureau data.
const (
	inquiryWindow        = 6 * 30 * 24 * time.Hour  // trailing 6 months
	newAccountWindow     = 12 * 30 * 24 * time.Hour // trailing 12 months
	manyInquiries        = 5
	someInquiries        = 2
	manyNewAccounts      = 3
	utilizationHigh      = 0.80
	utilizationElevated  = 0.50
	delinquencyRateCrit  = 0.30
	delinquencyRateHigh  = 0.15
)

func (e *Engine) behavioralComponent(bureau *domain.BureauSnapshot) (float64, []domain.RiskFactor) {
	base := defaultBehavioralScore
	if bureau == nil {
		return base, nil
	}

	var factors []domain.RiskFactor
	now := e.now()

	hardInquiries := 0
	for _, inq := range bureau.Inquiries {
		if inq.Type == domain.InquiryHard && now.Sub(inq.Date) <= inquiryWindow {
			hardInquiries++
		}
	}
	switch {
	case hardInquiries > manyInquiries:
		factors = append(factors, domain.RiskFactor{
			Name:           "excessive_credit_inquiries",
			Category:       domain.CategoryBehavioral,
			Severity:       domain.TierHigh,
			Weight:         0.15,
			Value:          hardInquiries,
			Description:    fmt.Sprintf("%d hard inquiries in past 6 months", hardInquiries),
			Recommendation: "Investigate credit-seeking behavior",
		})
		base += 20
	case hardInquiries > someInquiries:
		factors = append(factors, domain.RiskFactor{
			Name:           "multiple_credit_inquiries",
			Category:       domain.CategoryBehavioral,
			Severity:       domain.TierMedium,
			Weight:         0.10,
			Value:          hardInquiries,
			Description:    fmt.Sprintf("%d hard inquiries in past 6 months", hardInquiries),
			Recommendation: "Monitor credit application patterns",
		})
		base += 10
	}

	recentAccounts := 0
	delinquent := 0
	for _, acc := range bureau.Accounts {
		if now.Sub(acc.OpenedDate) <= newAccountWindow {
			recentAccounts++
		}
		if acc.Delinquencies > 0 {
			delinquent++
		}
	}
	if recentAccounts > manyNewAccounts {
		factors = append(factors, domain.RiskFactor{
			Name:           "rapid_account_opening",
			Category:       domain.CategoryBehavioral,
			Severity:       domain.TierHigh,
			Weight:         0.12,
			Value:          recentAccounts,
			Description:    fmt.Sprintf("%d new accounts opened in past 12 months", recentAccounts),
			Recommendation: "Investigate potential credit abuse",
		})
		base += 15
	}

	if delinquent > 0 && len(bureau.Accounts) > 0 {
		rate := float64(delinquent) / float64(len(bureau.Accounts))
		var severity string
		switch {
		case rate > delinquencyRateCrit:
			severity = domain.TierCritical
			base += 25
		case rate > delinquencyRateHigh:
			severity = domain.TierHigh
			base += 15
		default:
			severity = domain.TierMedium
			base += 8
		}
		factors = append(factors, domain.RiskFactor{
			Name:           "payment_delinquencies",
			Category:       domain.CategoryBehavioral,
			Severity:       severity,
			Weight:         0.18,
			Value:          rate,
			Description:    fmt.Sprintf("%d accounts with delinquencies (%.1f%%)", delinquent, rate*100),
			Recommendation: "Implement enhanced payment monitoring",
		})
	}

	switch util := bureau.Summary.CreditUtilization; {
	case util > utilizationHigh:
		factors = append(factors, domain.RiskFactor{
			Name:           "high_utilization_pattern",
			Category:       domain.CategoryBehavioral,
			Severity:       domain.TierHigh,
			Weight:         0.12,
			Value:          util,
			Description:    fmt.Sprintf("High credit utilization at %.1f%%", util*100),
			Recommendation: "Monitor spending patterns and consider lower limits",
		})
		base += 12
	case util > utilizationElevated:
		factors = append(factors, domain.RiskFactor{
			Name:           "elevated_utilization",
			Category:       domain.CategoryBehavioral,
			Severity:       domain.TierMedium,
			Weight:         0.08,
			Value:          util,
			Description:    fmt.Sprintf("Elevated credit utilization at %.1f%%", util*100),
			Recommendation: "Encourage utilization management",
		})
		base += 6
	}

	return clamp(base, 0, 100), factors
}

// ─── Component 4: demographics (weight 0.10) ─────────────────────────────────

// higherRiskStates carries elevated regional risk adjustments.
var higherRiskStates = map[string]bool{
	"NV": true,
	"FL": true,
	"AZ": true,
}

func (e *Engine) demographicComponent(req *domain.EvaluationRequest) (float64, []domain.RiskFactor) {
	var factors []domain.RiskFactor
	base := 20.0

	age := req.Applicant.Age
	if age == 0 {
		age = 30 // unknown age carries no age-based risk
	}

	switch {
	case age < 21:
		factors = append(factors, domain.RiskFactor{
			Name:           "young_age",
			Category:       domain.CategoryDemographic,
			Severity:       domain.TierMedium,
			Weight:         0.08,
			Value:          age,
			Description:    fmt.Sprintf("Young age of %d years indicates limited credit history", age),
			Recommendation: "Consider secured products or parental co-signer",
		})
		base += 10
	case age < 25:
		factors = append(factors, domain.RiskFactor{
			Name:           "early_career_age",
			Category:       domain.CategoryDemographic,
			Severity:       domain.TierLow,
			Weight:         0.05,
			Value:          age,
			Description:    fmt.Sprintf("Age %d indicates early career stage", age),
			Recommendation: "Standard underwriting with income verification",
		})
		base += 5
	case age > 70:
		factors = append(factors, domain.RiskFactor{
			Name:           "senior_age",
			Category:       domain.CategoryDemographic,
			Severity:       domain.TierLow,
			Weight:         0.05,
			Value:          age,
			Description:    fmt.Sprintf("Senior age of %d years", age),
			Recommendation: "Verify income stability and retirement planning",
		})
		base += 3
	}

	if state := strings.ToUpper(req.Applicant.State); higherRiskStates[state] {
		factors = append(factors, domain.RiskFactor{
			Name:           "high_risk_geography",
			Category:       domain.CategoryDemographic,
			Severity:       domain.TierMedium,
			Weight:         0.06,
			Value:          state,
			Description:    fmt.Sprintf("Location in higher-risk state: %s", state),
			Recommendation: "Apply regional risk adjustments",
		})
		base += 8
	}

	return clamp(base, 0, 100), factors
}

// ─── Component 5: external / market (weight 0.10) ────────────────────────────

// volatileIndustryKeywords flag occupations exposed to demand shocks.
var volatileIndustryKeywords = []string{"hospitality", "restaurant", "tourism"}

func (e *Engine) externalComponent(req *domain.EvaluationRequest, market []domain.MarketInsight) (float64, []domain.RiskFactor) {
	base := defaultExternalScore
	var factors []domain.RiskFactor

	// Only the top 5 insights influence the score; the rest are noise.
	top := market
	if len(top) > 5 {
		top = top[:5]
	}
	for _, insight := range top {
		if insight.Severity != domain.TierHigh && insight.Severity != domain.TierCritical {
			continue
		}
		summary := strings.ToLower(insight.Summary)
		switch {
		case strings.Contains(summary, "fraud"):
			factors = append(factors, domain.RiskFactor{
				Name:           "market_fraud_trend",
				Category:       domain.CategoryExternal,
				Severity:       domain.TierHigh,
				Weight:         0.12,
				Value:          insight.Confidence,
				Description:    fmt.Sprintf("Market fraud trend: %s", truncate(insight.Summary, 100)),
				Recommendation: "Implement enhanced fraud monitoring",
			})
			base += 15
		case strings.Contains(summary, "economic"):
			factors = append(factors, domain.RiskFactor{
				Name:           "economic_headwinds",
				Category:       domain.CategoryExternal,
				Severity:       domain.TierMedium,
				Weight:         0.08,
				Value:          insight.Confidence,
				Description:    fmt.Sprintf("Economic risk factor: %s", truncate(insight.Summary, 100)),
				Recommendation: "Apply conservative underwriting",
			})
			base += 10
		}
	}

	occupation := strings.ToLower(req.Applicant.Occupation)
	for _, keyword := range volatileIndustryKeywords {
		if strings.Contains(occupation, keyword) {
			factors = append(factors, domain.RiskFactor{
				Name:           "volatile_industry",
				Category:       domain.CategoryExternal,
				Severity:       domain.TierMedium,
				Weight:         0.10,
				Value:          req.Applicant.Occupation,
				Description:    fmt.Sprintf("Employment in volatile industry: %s", occupation),
				Recommendation: "Monitor employment stability closely",
			})
			base += 12
			break
		}
	}

	return clamp(base, 0, 100), factors
}

// ─── Adjustments ──────────────────────────────────────────────────────────────

// applyAdjustments layers the ordered post-component adjustments onto the
// base score: first-time applicant, outsized limit request, then severity
// clustering. Each delta is a fraction of the base, not of the running total.
func applyAdjustments(base float64, factors []domain.RiskFactor, req *domain.EvaluationRequest, bureau *domain.BureauSnapshot) (float64, []domain.Adjustment) {
	adjustments := []domain.Adjustment{}
	final := base

	if isFirstTimeApplicant(bureau) {
		delta := base * 0.10
		adjustments = append(adjustments, domain.Adjustment{Name: "first_time_applicant", Delta: delta})
		final += delta
	}

	if income := req.Applicant.AnnualIncome; income > 0 {
		if req.Application.RequestedLimit/income > 0.5 {
			delta := base * 0.15
			adjustments = append(adjustments, domain.Adjustment{Name: "high_limit_request", Delta: delta})
			final += delta
		}
	}

	var high, critical int
	for _, f := range factors {
		switch f.Severity {
		case domain.TierHigh:
			high++
		case domain.TierCritical:
			critical++
		}
	}
	if critical > 0 {
		delta := base * 0.25 * float64(critical)
		adjustments = append(adjustments, domain.Adjustment{Name: "critical_risk_factors", Delta: delta})
		final += delta
	} else if high > 2 {
		delta := base * 0.12 * float64(high-2)
		adjustments = append(adjustments, domain.Adjustment{Name: "multiple_high_risks", Delta: delta})
		final += delta
	}

	return clamp(final, 0, 100), adjustments
}

// isFirstTimeApplicant flags applicants with no established bureau record:
// no snapshot at all, or a bureau score below 600.
func isFirstTimeApplicant(bureau *domain.BureauSnapshot) bool {
	return bureau == nil || bureau.CreditScore < 600
}

// ─── Confidence ───────────────────────────────────────────────────────────────

// confidence estimates how much to trust the assessment given data
// completeness. Clamped to [0.1, 1.0].
func (e *Engine) confidence(req *domain.EvaluationRequest, bureau *domain.BureauSnapshot, factors []domain.RiskFactor) float64 {
	confidence := 0.5

	if req.Applicant.AnnualIncome > 0 {
		confidence += 0.1
	}
	if req.Applicant.EmploymentYears > 0 {
		confidence += 0.1
	}
	if bureau != nil {
		confidence += 0.2
		if len(bureau.Accounts) > 0 {
			confidence += 0.1
		}
		if bureau.CreditScore > 0 {
			confidence += 0.1
		}
	}
	if req.Applicant.Occupation == "" {
		confidence -= 0.05
	}
	// High-severity findings make the outcome more certain, not less.
	for _, f := range factors {
		if f.Severity == domain.TierCritical {
			confidence += 0.05
		}
	}

	return clamp(confidence, 0.1, 1.0)
}

// ─── Recommendations ──────────────────────────────────────────────────────────

var tierRecommendations = map[string][]string{
	domain.TierCritical: {
		"Strongly recommend denial of credit application",
		"If approved, implement maximum monitoring and lowest possible limits",
		"Require co-signer or secured collateral",
		"Manual review required for any credit decisions",
	},
	domain.TierHigh: {
		"Consider denial or approve with strict conditions",
		"Implement enhanced monitoring and fraud detection",
		"Lower credit limits significantly below requested amount",
		"Require additional income verification",
	},
	domain.TierMedium: {
		"Approve with standard to conservative terms",
		"Implement regular account monitoring",
		"Consider graduated credit limit increases based on performance",
	},
	domain.TierLow: {
		"Eligible for standard or premium credit products",
		"Consider competitive rates and higher credit limits",
		"Good candidate for relationship banking products",
	},
}

// recommendations joins the tier boilerplate with up to 5 deduplicated
// per-factor recommendations, preserving first-seen order.
func recommendations(tier string, factors []domain.RiskFactor) []string {
	recs := append([]string{}, tierRecommendations[tier]...)

	seen := make(map[string]bool)
	added := 0
	for _, f := range factors {
		if f.Recommendation == "" || seen[f.Recommendation] {
			continue
		}
		seen[f.Recommendation] = true
		recs = append(recs, f.Recommendation)
		added++
		if added == 5 {
			break
		}
	}
	return recs
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
