// Package reasoner assembles the analysis prompt for the external narrative
// reasoner and validates its structured responses. Responses that do not
// conform to the expected schema are rejected wholesale; a partial narrative
// is worse than none.
package reasoner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"financefirst/risk-api/internal/domain"
)

// ErrMalformedResponse signals that the reasoner returned output not
// conforming to the narrative schema. Callers discard the narrative and
// keep the numeric assessment.
var ErrMalformedResponse = errors.New("malformed reasoner response")

const systemPrompt = `You are a senior credit risk analyst performing comprehensive credit risk evaluations using customer financial profiles, credit bureau data, bank policies, and market fraud intelligence.

Your analysis must be factual and evidence-based, compliant with banking regulations, clear in reasoning, and balanced between risk and business opportunity.`

const responseSchema = `{
  "risk_score": <float 0-100>,
  "risk_level": "<LOW|MEDIUM|HIGH|CRITICAL>",
  "risk_factors": [
    {"factor": "factor_name", "severity": "LOW|MEDIUM|HIGH|CRITICAL", "description": "explanation"}
  ],
  "compliance_notes": ["note1", "note2"],
  "recommendation": "detailed recommendation",
  "confidence_score": <float 0-1>
}`

// BuildPrompt assembles the full analysis prompt from the request, the
// numeric assessment, and the retrieved context. Only the top 3 market
// insights are included; the rest add noise without signal.
func BuildPrompt(req *domain.EvaluationRequest, assessment *domain.RiskAssessment, bureau *domain.BureauSnapshot, policies []domain.PolicySnippet, insights []domain.MarketInsight) string {
	var b strings.Builder
	b.WriteString(systemPrompt)

	writeJSONSection(&b, "APPLICANT PROFILE", req.Applicant)
	writeJSONSection(&b, "APPLICATION DATA", req.Application)
	if bureau != nil {
		writeJSONSection(&b, "CREDIT BUREAU DATA", bureau)
	}
	writeJSONSection(&b, "CALCULATED RISK METRICS", assessment)

	if len(policies) > 0 {
		b.WriteString("\n\nRELEVANT BANK POLICIES:\n")
		for _, p := range policies {
			b.WriteString(p.Content)
			b.WriteString("\n")
		}
	}

	if len(insights) > 0 {
		b.WriteString("\nMARKET FRAUD INSIGHTS:\n")
		top := insights
		if len(top) > 3 {
			top = top[:3]
		}
		for _, insight := range top {
			b.WriteString(insight.Summary)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nBased on this information, provide a detailed risk analysis in the following JSON format:\n")
	b.WriteString(responseSchema)
	return b.String()
}

func writeJSONSection(b *strings.Builder, title string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	b.WriteString("\n\n")
	b.WriteString(title)
	b.WriteString(":\n")
	b.Write(data)
}

// Parse validates a raw reasoner response against the narrative schema.
// Unknown risk levels, out-of-range scores, and missing required fields all
// yield ErrMalformedResponse.
func Parse(raw json.RawMessage) (*domain.Narrative, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var narrative domain.Narrative
	decoder := json.NewDecoder(strings.NewReader(string(raw)))
	if err := decoder.Decode(&narrative); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if narrative.RiskScore < 0 || narrative.RiskScore > 100 {
		return nil, fmt.Errorf("%w: risk_score %.2f out of range", ErrMalformedResponse, narrative.RiskScore)
	}
	if !validTier(narrative.RiskLevel) {
		return nil, fmt.Errorf("%w: unknown risk_level %q", ErrMalformedResponse, narrative.RiskLevel)
	}
	if narrative.ConfidenceScore < 0 || narrative.ConfidenceScore > 1 {
		return nil, fmt.Errorf("%w: confidence_score %.2f out of range", ErrMalformedResponse, narrative.ConfidenceScore)
	}
	if narrative.Recommendation == "" {
		return nil, fmt.Errorf("%w: missing recommendation", ErrMalformedResponse)
	}
	for i, factor := range narrative.RiskFactors {
		if factor.Factor == "" {
			return nil, fmt.Errorf("%w: risk_factors[%d] missing factor name", ErrMalformedResponse, i)
		}
		if !validTier(factor.Severity) {
			return nil, fmt.Errorf("%w: risk_factors[%d] unknown severity %q", ErrMalformedResponse, i, factor.Severity)
		}
	}

	return &narrative, nil
}

func validTier(tier string) bool {
	switch tier {
	case domain.TierLow, domain.TierMedium, domain.TierHigh, domain.TierCritical:
		return true
	}
	return false
}
