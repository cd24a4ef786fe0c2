package scoring

import (
	"testing"
	"time"

	"financefirst/risk-api/internal/domain"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewWithClock(func() time.Time { return testNow })
}

func baseRequest() *domain.EvaluationRequest {
	return &domain.EvaluationRequest{
		Applicant: domain.ApplicantProfile{
			CustomerID:          "cust-001",
			Age:                 35,
			AnnualIncome:        90000,
			EmploymentYears:     8,
			Occupation:          "engineer",
			State:               "CO",
			MonthlyDebtPayments: 1650, // DTI = 0.22
			CreditScore:         780,
		},
		Application: domain.ApplicationDetails{
			ApplicationID:  "app-001",
			ProductType:    "credit_card",
			RequestedLimit: 10000,
		},
	}
}

func TestTierForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, domain.TierLow},
		{24.9, domain.TierLow},
		{25.0, domain.TierMedium},
		{49.9, domain.TierMedium},
		{50.0, domain.TierHigh},
		{74.9, domain.TierHigh},
		{75.0, domain.TierCritical},
		{100, domain.TierCritical},
	}
	for _, tt := range tests {
		if got := TierForScore(tt.score); got != tt.want {
			t.Errorf("TierForScore(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestScoreStrongApplicant(t *testing.T) {
	assessment := testEngine().Score(baseRequest(), nil, nil)

	if assessment.Tier != domain.TierLow {
		t.Errorf("tier = %s, want LOW (score %.2f)", assessment.Tier, assessment.OverallScore)
	}
	if assessment.OverallScore >= 25 {
		t.Errorf("score = %.2f, want < 25", assessment.OverallScore)
	}
	// No bureau snapshot: confidence must stay well below certain.
	if assessment.Confidence >= 0.8 {
		t.Errorf("confidence = %.2f, want < 0.8 without bureau data", assessment.Confidence)
	}
	if assessment.ModelVersion != ModelVersion {
		t.Errorf("model version = %s, want %s", assessment.ModelVersion, ModelVersion)
	}
}

func TestScoreDistressedApplicant(t *testing.T) {
	req := &domain.EvaluationRequest{
		Applicant: domain.ApplicantProfile{
			CustomerID:          "cust-002",
			Age:                 23,
			AnnualIncome:        22000,
			EmploymentYears:     0.5,
			Occupation:          "server",
			State:               "NV",
			MonthlyDebtPayments: 1008, // DTI ~ 0.55
			CreditScore:         590,
		},
		Application: domain.ApplicationDetails{
			ApplicationID:  "app-002",
			ProductType:    "credit_card",
			RequestedLimit: 15000,
		},
	}
	bureau := &domain.BureauSnapshot{
		CreditScore: 590,
		Summary: domain.AccountSummary{
			CreditUtilization: 0.85,
			PaymentHistory:    domain.PaymentHistoryPoor,
		},
		Accounts: []domain.BureauAccount{
			{OpenedDate: testNow.AddDate(-3, 0, 0), Delinquencies: 2},
			{OpenedDate: testNow.AddDate(-2, 0, 0), Delinquencies: 1},
			{OpenedDate: testNow.AddDate(0, -2, 0)},
			{OpenedDate: testNow.AddDate(0, -4, 0)},
		},
		Inquiries: []domain.BureauInquiry{
			{Date: testNow.AddDate(0, -1, 0), Type: domain.InquiryHard},
			{Date: testNow.AddDate(0, -1, -15), Type: domain.InquiryHard},
			{Date: testNow.AddDate(0, -2, 0), Type: domain.InquiryHard},
			{Date: testNow.AddDate(0, -3, 0), Type: domain.InquiryHard},
			{Date: testNow.AddDate(0, -4, 0), Type: domain.InquiryHard},
			{Date: testNow.AddDate(0, -5, 0), Type: domain.InquiryHard},
		},
	}

	assessment := testEngine().Score(req, bureau, nil)

	if assessment.Tier != domain.TierCritical {
		t.Fatalf("tier = %s, want CRITICAL (score %.2f)", assessment.Tier, assessment.OverallScore)
	}
	if assessment.OverallScore > 100 {
		t.Errorf("score = %.2f, exceeds clamp ceiling", assessment.OverallScore)
	}

	var foundCriticalDelinquency bool
	for _, f := range assessment.Factors {
		if f.Name == "payment_delinquencies" && f.Severity == domain.TierCritical {
			foundCriticalDelinquency = true
		}
	}
	// Delinquency rate 2/4 = 0.5 is above the 0.3 critical threshold.
	if !foundCriticalDelinquency {
		t.Error("expected CRITICAL payment_delinquencies factor")
	}
}

func TestScoreDeterministic(t *testing.T) {
	e := testEngine()
	a := e.Score(baseRequest(), nil, nil)
	b := e.Score(baseRequest(), nil, nil)

	if a.OverallScore != b.OverallScore {
		t.Errorf("scores differ: %.4f vs %.4f", a.OverallScore, b.OverallScore)
	}
	if a.Confidence != b.Confidence {
		t.Errorf("confidences differ: %.4f vs %.4f", a.Confidence, b.Confidence)
	}
	if len(a.Factors) != len(b.Factors) {
		t.Fatalf("factor counts differ: %d vs %d", len(a.Factors), len(b.Factors))
	}
	for i := range a.Factors {
		if a.Factors[i].Name != b.Factors[i].Name {
			t.Errorf("factor %d differs: %s vs %s", i, a.Factors[i].Name, b.Factors[i].Name)
		}
	}
}

func TestScoreClampedToRange(t *testing.T) {
	// Pile on every penalty available and verify the clamp holds.
	req := &domain.EvaluationRequest{
		Applicant: domain.ApplicantProfile{
			CustomerID:          "cust-003",
			Age:                 19,
			AnnualIncome:        15000,
			EmploymentYears:     0.2,
			Occupation:          "hospitality",
			State:               "FL",
			MonthlyDebtPayments: 1200,
			CreditScore:         410,
		},
		Application: domain.ApplicationDetails{
			ApplicationID:  "app-003",
			RequestedLimit: 20000,
		},
	}
	bureau := &domain.BureauSnapshot{
		CreditScore: 410,
		Summary: domain.AccountSummary{
			CreditUtilization: 0.95,
			PaymentHistory:    domain.PaymentHistoryPoor,
		},
		Accounts: []domain.BureauAccount{
			{OpenedDate: testNow.AddDate(0, -1, 0), Delinquencies: 3},
			{OpenedDate: testNow.AddDate(0, -2, 0), Delinquencies: 2},
			{OpenedDate: testNow.AddDate(0, -3, 0), Delinquencies: 1},
			{OpenedDate: testNow.AddDate(0, -6, 0), Delinquencies: 1},
		},
	}

	assessment := testEngine().Score(req, bureau, nil)
	if assessment.OverallScore < 0 || assessment.OverallScore > 100 {
		t.Errorf("score = %.2f, want within [0, 100]", assessment.OverallScore)
	}
	if assessment.Tier != domain.TierCritical {
		t.Errorf("tier = %s, want CRITICAL", assessment.Tier)
	}
	if assessment.Confidence < 0.1 || assessment.Confidence > 1.0 {
		t.Errorf("confidence = %.2f, want within [0.1, 1.0]", assessment.Confidence)
	}
}

func TestScoreCreditScoreMonotonic(t *testing.T) {
	// Holding everything else fixed, a better credit score never raises risk.
	e := testEngine()
	scores := []int{420, 560, 610, 660, 710, 760, 810}
	prev := 101.0
	for _, cs := range scores {
		req := baseRequest()
		req.Applicant.CreditScore = cs
		got := e.Score(req, nil, nil).OverallScore
		if got > prev {
			t.Errorf("credit score %d produced risk %.2f, higher than %.2f for worse credit", cs, got, prev)
		}
		prev = got
	}
}

func TestScoreMissingBureauFallback(t *testing.T) {
	e := testEngine()
	req := baseRequest()

	withBureau := e.Score(req, &domain.BureauSnapshot{
		CreditScore: 780,
		Summary: domain.AccountSummary{
			CreditUtilization: 0.2,
			PaymentHistory:    domain.PaymentHistoryGood,
		},
		Accounts: []domain.BureauAccount{{OpenedDate: testNow.AddDate(-5, 0, 0)}},
	}, nil)
	without := e.Score(req, nil, nil)

	if without.Breakdown.BehavioralComponent != defaultBehavioralScore {
		t.Errorf("behavioral component = %.2f without bureau, want flat %.2f",
			without.Breakdown.BehavioralComponent, defaultBehavioralScore)
	}
	if diff := withBureau.Confidence - without.Confidence; diff < 0.2 {
		t.Errorf("confidence gap = %.2f, want >= 0.2 when bureau data is absent", diff)
	}
}

func TestScoreHighLimitAdjustment(t *testing.T) {
	e := testEngine()
	req := baseRequest()
	req.Application.RequestedLimit = 50000 // 0.56 of income

	assessment := e.Score(req, nil, nil)
	var found bool
	for _, adj := range assessment.Breakdown.Adjustments {
		if adj.Name == "high_limit_request" {
			found = true
			if adj.Delta <= 0 {
				t.Errorf("high_limit_request delta = %.2f, want positive", adj.Delta)
			}
		}
	}
	if !found {
		t.Error("expected high_limit_request adjustment for limit > 50% of income")
	}
}

func TestScoreFirstTimeApplicantAdjustment(t *testing.T) {
	e := testEngine()

	hasAdjustment := func(a domain.RiskAssessment) bool {
		for _, adj := range a.Breakdown.Adjustments {
			if adj.Name == "first_time_applicant" {
				return true
			}
		}
		return false
	}

	// No bureau record at all counts as first-time.
	if !hasAdjustment(e.Score(baseRequest(), nil, nil)) {
		t.Error("expected first_time_applicant adjustment without bureau data")
	}

	// An established bureau record suppresses the adjustment.
	established := &domain.BureauSnapshot{
		CreditScore: 780,
		Summary:     domain.AccountSummary{PaymentHistory: domain.PaymentHistoryGood},
	}
	if hasAdjustment(e.Score(baseRequest(), established, nil)) {
		t.Error("unexpected first_time_applicant adjustment with bureau score 780")
	}
}

func TestScoreExternalInsights(t *testing.T) {
	e := testEngine()
	market := []domain.MarketInsight{
		{
			Type:     "fraud_trend",
			Severity: domain.TierHigh,
			Summary:  "Surge in card fraud targeting new applicants",
		},
	}

	plain := e.Score(baseRequest(), nil, nil)
	withMarket := e.Score(baseRequest(), nil, market)

	if withMarket.Breakdown.ExternalComponent <= plain.Breakdown.ExternalComponent {
		t.Errorf("external component %.2f with fraud insight, want above baseline %.2f",
			withMarket.Breakdown.ExternalComponent, plain.Breakdown.ExternalComponent)
	}

	var found bool
	for _, f := range withMarket.Factors {
		if f.Name == "market_fraud_trend" {
			found = true
		}
	}
	if !found {
		t.Error("expected market_fraud_trend factor from HIGH severity fraud insight")
	}
}

func TestRecommendationsDedupAndCap(t *testing.T) {
	factors := []domain.RiskFactor{
		{Name: "a", Recommendation: "rec one"},
		{Name: "b", Recommendation: "rec two"},
		{Name: "c", Recommendation: "rec one"}, // duplicate
		{Name: "d", Recommendation: "rec three"},
		{Name: "e", Recommendation: "rec four"},
		{Name: "f", Recommendation: "rec five"},
		{Name: "g", Recommendation: "rec six"}, // beyond cap
	}

	recs := recommendations(domain.TierMedium, factors)
	boilerplate := len(tierRecommendations[domain.TierMedium])

	factorRecs := recs[boilerplate:]
	if len(factorRecs) != 5 {
		t.Fatalf("factor recommendations = %d, want capped at 5", len(factorRecs))
	}
	want := []string{"rec one", "rec two", "rec three", "rec four", "rec five"}
	for i, w := range want {
		if factorRecs[i] != w {
			t.Errorf("recommendation %d = %q, want %q", i, factorRecs[i], w)
		}
	}
}

func TestDebtToIncomeZeroIncome(t *testing.T) {
	if got := debtToIncome(500, 0); got != 1.0 {
		t.Errorf("debtToIncome with zero income = %.2f, want 1.0", got)
	}
}

func TestModelInfo(t *testing.T) {
	info := testEngine().ModelInfo()
	if info.Version != ModelVersion {
		t.Errorf("version = %s, want %s", info.Version, ModelVersion)
	}
	var sum float64
	for _, w := range info.Weights {
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("weights sum = %.4f, want 1.0", sum)
	}
	if len(info.RiskTiers) != 4 {
		t.Errorf("risk tiers = %d, want 4", len(info.RiskTiers))
	}
}
