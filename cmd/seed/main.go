// Command seed generates development datasets for the FinanceFirst risk
// API: a static market intelligence corpus (data/market_seed.json) and a
// synthetic applicant cohort (data/applicants_seed.json).
//
// Usage:
//
//	go run ./cmd/seed
//
// The market documents cover every fraud category the trend analyzer
// recognizes, with a mix of severities, source authorities, and publication
// ages, plus low-relevance noise. The applicant cohorts span the risk
// spectrum (prime, thin-file, subprime, volatile-industry) so a seeded
// server produces a realistic tier distribution in its summary report.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"financefirst/risk-api/internal/domain"
)

func main() {
	rng := rand.New(rand.NewSource(7)) // deterministic seed for reproducibility

	now := time.Now().UTC()
	var docs []domain.MarketDocument

	docs = append(docs, fraudCategoryDocs(rng, now)...)
	docs = append(docs, economicDocs(rng, now)...)
	docs = append(docs, regulatoryDocs(rng, now)...)
	docs = append(docs, noiseDocs(rng, now)...)

	// Shuffle so categories aren't trivially grouped in the file.
	rng.Shuffle(len(docs), func(i, j int) {
		docs[i], docs[j] = docs[j], docs[i]
	})

	var applicants []domain.EvaluationRequest
	applicants = append(applicants, primeCohort(rng)...)
	applicants = append(applicants, thinFileCohort(rng)...)
	applicants = append(applicants, subprimeCohort(rng)...)
	applicants = append(applicants, volatileIndustryCohort(rng)...)
	rng.Shuffle(len(applicants), func(i, j int) {
		applicants[i], applicants[j] = applicants[j], applicants[i]
	})

	if err := os.MkdirAll("data", 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir error: %v\n", err)
		os.Exit(1)
	}
	writeJSON("data/market_seed.json", docs)
	writeJSON("data/applicants_seed.json", applicants)

	fmt.Printf("Generated %d market documents and %d applicants → data/\n", len(docs), len(applicants))
}

func writeJSON(path string, v any) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
		os.Exit(1)
	}
}

// ─── Applicant cohorts ────────────────────────────────────────────────────────

var applicantSeq int

func request(applicant domain.ApplicantProfile, product string, limit float64) domain.EvaluationRequest {
	applicantSeq++
	applicant.CustomerID = fmt.Sprintf("cust-%04d", applicantSeq)
	return domain.EvaluationRequest{
		Applicant: applicant,
		Application: domain.ApplicationDetails{
			ApplicationID:  fmt.Sprintf("app-%04d", applicantSeq),
			ProductType:    product,
			RequestedLimit: limit,
		},
	}
}

// primeCohort: established borrowers who should land in the LOW tier.
func primeCohort(rng *rand.Rand) []domain.EvaluationRequest {
	occupations := []string{"engineer", "physician", "accountant", "attorney"}
	states := []string{"CA", "NY", "WA", "MA", "IL"}
	var out []domain.EvaluationRequest
	for i := 0; i < 12; i++ {
		income := 85000 + rng.Float64()*70000
		out = append(out, request(domain.ApplicantProfile{
			Age:                 32 + rng.Intn(25),
			AnnualIncome:        income,
			EmploymentYears:     4 + rng.Float64()*15,
			Occupation:          occupations[rng.Intn(len(occupations))],
			State:               states[rng.Intn(len(states))],
			AddressTenureYears:  3 + rng.Float64()*10,
			MonthlyDebtPayments: income / 12 * (0.1 + rng.Float64()*0.15),
			CreditScore:         720 + rng.Intn(100),
		}, "credit_card", 5000+float64(rng.Intn(10))*1000))
	}
	return out
}

// thinFileCohort: young applicants with no declared score and short history.
func thinFileCohort(rng *rand.Rand) []domain.EvaluationRequest {
	var out []domain.EvaluationRequest
	for i := 0; i < 6; i++ {
		income := 28000 + rng.Float64()*20000
		out = append(out, request(domain.ApplicantProfile{
			Age:                 19 + rng.Intn(6),
			AnnualIncome:        income,
			EmploymentYears:     rng.Float64() * 1.5,
			State:               "TX",
			MonthlyDebtPayments: income / 12 * (0.15 + rng.Float64()*0.1),
		}, "credit_card", 1000+float64(rng.Intn(3))*500))
	}
	return out
}

// subprimeCohort: low scores and heavy debt loads; HIGH or CRITICAL tiers.
func subprimeCohort(rng *rand.Rand) []domain.EvaluationRequest {
	states := []string{"NV", "FL", "AZ"}
	var out []domain.EvaluationRequest
	for i := 0; i < 8; i++ {
		income := 20000 + rng.Float64()*18000
		out = append(out, request(domain.ApplicantProfile{
			Age:                 24 + rng.Intn(30),
			AnnualIncome:        income,
			EmploymentYears:     rng.Float64() * 3,
			Occupation:          "retail",
			State:               states[rng.Intn(len(states))],
			MonthlyDebtPayments: income / 12 * (0.45 + rng.Float64()*0.2),
			CreditScore:         520 + rng.Intn(100),
		}, "personal_loan", income*(0.4+rng.Float64()*0.4)))
	}
	return out
}

// volatileIndustryCohort: decent credit but employment in sectors the
// engine applies an industry multiplier to.
func volatileIndustryCohort(rng *rand.Rand) []domain.EvaluationRequest {
	occupations := []string{"hospitality", "retail"}
	var out []domain.EvaluationRequest
	for i := 0; i < 6; i++ {
		income := 38000 + rng.Float64()*30000
		out = append(out, request(domain.ApplicantProfile{
			Age:                 26 + rng.Intn(20),
			AnnualIncome:        income,
			EmploymentYears:     1 + rng.Float64()*6,
			Occupation:          occupations[rng.Intn(len(occupations))],
			State:               "FL",
			AddressTenureYears:  1 + rng.Float64()*4,
			MonthlyDebtPayments: income / 12 * (0.25 + rng.Float64()*0.15),
			CreditScore:         640 + rng.Intn(80),
		}, "credit_card", 2000+float64(rng.Intn(6))*500))
	}
	return out
}

// ─── Fraud category coverage ──────────────────────────────────────────────────

// categorySeed pairs headline templates with the keyword vocabulary of one
// fraud category so the analyzer's keyword matching fires on generated text.
type categorySeed struct {
	source  string
	url     string
	titles  []string
	descs   []string
	official bool // government or university source
}

func fraudCategoryDocs(rng *rand.Rand, now time.Time) []domain.MarketDocument {
	seeds := []categorySeed{
		{
			source:  "FTC Consumer Protection",
			url:     "https://www.ftc.gov/news/card-skimming-advisory",
			official: true,
			titles: []string{
				"Card skimming surge reported at fuel stations across three states",
				"ATM fraud alert: skimmer devices found on point of sale terminals",
				"Rising card cloning incidents tied to compromised POS hardware",
			},
			descs: []string{
				"Investigators describe a sharp increase in skimmer installations targeting card readers, with cloned credit card numbers sold within days.",
				"Consumer complaints about ATM fraud and point of sale tampering doubled quarter over quarter, an epidemic by historical standards.",
				"Banks warn of rising card skimming losses as fraud rings rotate devices between fuel stations.",
			},
		},
		{
			source: "Financial Times",
			url:    "https://ft.example.com/identity-theft-wave",
			titles: []string{
				"Identity theft wave follows large data breach at retail chain",
				"Stolen identity marketplaces expand after personal information leak",
			},
			descs: []string{
				"Compromised credentials and leaked personal information are fueling an increase in identity theft cases, regulators warn.",
				"A surge in stolen identity listings followed the breach, with credentials bundled by region and credit quality.",
			},
		},
		{
			source: "Krebs on Security",
			url:    "https://krebsonsecurity.example.com/synthetic-fraud",
			titles: []string{
				"Synthetic identity fraud rising fast in credit applications",
				"Fabricated identity rings exploit thin-file applicants, lenders say",
			},
			descs: []string{
				"Lenders report a rising share of applications built on synthetic identity profiles mixing fake identity fragments with real SSNs.",
				"The created identity pattern is an increasing concern for bureaus because fabricated identity files age into apparent legitimacy.",
			},
		},
		{
			source:  "CISA",
			url:     "https://www.cisa.gov/account-takeover-advisory",
			official: true,
			titles: []string{
				"Account takeover attacks surge against regional bank customers",
				"Credential stuffing warning: hijacked account reports climbing",
			},
			descs: []string{
				"Unauthorized access incidents driven by credential stuffing rose sharply, with hijacked accounts drained within hours.",
				"A warning for institutions: account takeover via compromised account credentials shows an epidemic growth curve this quarter.",
			},
		},
		{
			source: "Reuters",
			url:    "https://reuters.example.com/online-fraud",
			titles: []string{
				"Online scam losses from phishing campaigns hit record levels",
				"Digital fraud alert: internet fraud complaints rising across e-commerce",
			},
			descs: []string{
				"Cyber fraud investigators link the increase to industrialized phishing kits targeting online scam victims at scale.",
				"E-commerce platforms flag a concerning rise in digital fraud chargebacks tied to internet fraud rings.",
			},
		},
	}

	var docs []domain.MarketDocument
	for _, seed := range seeds {
		for i, title := range seed.titles {
			relevance := 0.65 + rng.Float64()*0.3
			if seed.official {
				relevance = 0.8 + rng.Float64()*0.2
			}
			docs = append(docs, domain.MarketDocument{
				Title:          title,
				Description:    seed.descs[i%len(seed.descs)],
				URL:            seed.url,
				Source:         seed.source,
				PublishedDate:  now.Add(-time.Duration(1+rng.Intn(25)) * 24 * time.Hour),
				RelevanceScore: round2(relevance),
			})
		}
	}
	return docs
}

// ─── Economic and regulatory context ──────────────────────────────────────────

func economicDocs(rng *rand.Rand, now time.Time) []domain.MarketDocument {
	docs := []domain.MarketDocument{
		{
			Title:       "Recession risk rising as unemployment ticks up in service sectors",
			Description: "Economists flag hospitality and restaurant employment as most exposed to a downturn, with tourism spending already softening.",
			URL:         "https://bloomberg.example.com/recession-watch",
			Source:      "Bloomberg",
		},
		{
			Title:       "Credit card delinquency rates climb for third straight quarter",
			Description: "Lenders report rising delinquency and default concern among subprime borrowers as rates stay elevated.",
			URL:         "https://wsj.example.com/delinquency-trends",
			Source:      "Wall Street Journal",
		},
	}
	for i := range docs {
		docs[i].PublishedDate = now.Add(-time.Duration(2+rng.Intn(20)) * 24 * time.Hour)
		docs[i].RelevanceScore = round2(0.7 + rng.Float64()*0.2)
	}
	return docs
}

func regulatoryDocs(rng *rand.Rand, now time.Time) []domain.MarketDocument {
	docs := []domain.MarketDocument{
		{
			Title:       "New regulation tightens compliance requirements for credit issuers",
			Description: "The rule expands audit and compliance obligations for risk models used in consumer credit decisions.",
			URL:         "https://www.consumerfinance.gov/rulemaking",
			Source:      "CFPB",
		},
		{
			Title:       "Major data breach exposes loan application records",
			Description: "The breach leaked applicant income and account data; affected lenders face verification backlogs and fraud exposure.",
			URL:         "https://reuters.example.com/lender-breach",
			Source:      "Reuters",
		},
	}
	for i := range docs {
		docs[i].PublishedDate = now.Add(-time.Duration(1+rng.Intn(10)) * 24 * time.Hour)
		docs[i].RelevanceScore = round2(0.75 + rng.Float64()*0.2)
	}
	return docs
}

// ─── Noise ────────────────────────────────────────────────────────────────────

// noiseDocs are low-relevance filler the analyzer should discard, so seeded
// runs exercise the relevance gate rather than only the happy path.
func noiseDocs(rng *rand.Rand, now time.Time) []domain.MarketDocument {
	docs := []domain.MarketDocument{
		{
			Title:       "Local team wins championship after dramatic final",
			Description: "Fans celebrated downtown late into the night.",
			URL:         "https://sports.example.com/final",
			Source:      "Sports Daily",
		},
		{
			Title:       "Ten weekend recipes for the slow cooker",
			Description: "Comfort food ideas for the colder months.",
			URL:         "https://food.example.com/recipes",
			Source:      "Food Blog",
		},
		{
			Title:       "Smartphone maker teases foldable launch event",
			Description: "The announcement is expected to focus on display durability.",
			URL:         "https://tech.example.com/foldable",
			Source:      "Tech News",
		},
	}
	for i := range docs {
		docs[i].PublishedDate = now.Add(-time.Duration(1+rng.Intn(28)) * 24 * time.Hour)
		docs[i].RelevanceScore = round2(0.1 + rng.Float64()*0.3)
	}
	return docs
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}
