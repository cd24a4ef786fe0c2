// Package orchestrator drives the evaluation pipeline: validation,
// concurrent context retrieval, scoring, optional narrative enrichment, and
// fire-and-forget persistence.
//
// An evaluation moves through STARTED, RETRIEVING, SCORED, optionally
// ENRICHED, then COMPLETE. The FAILED state is reserved for validation and
// programming errors; provider failures degrade individual context sources
// instead of failing the evaluation.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"financefirst/risk-api/internal/domain"
	"financefirst/risk-api/internal/providers"
	"financefirst/risk-api/internal/reasoner"
	"financefirst/risk-api/internal/retrieval"
	"financefirst/risk-api/internal/scoring"
	"financefirst/risk-api/internal/store"
)

// Defaults applied when options are zero.
const (
	DefaultEvaluationTimeout = 30 * time.Second
	defaultSaveTimeout       = 5 * time.Second

	policyTopK          = 3
	policyMinSimilarity = 0.7
	marketTimeFilter    = "month"
)

// ValidationError reports a malformed evaluation request. It fails the
// request before any retrieval begins.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Message)
}

// Orchestrator coordinates a single evaluation end to end. Reasoner and
// store may be nil; enrichment and persistence are then skipped.
type Orchestrator struct {
	engine    *scoring.Engine
	retriever *retrieval.Retriever
	reasoner  providers.Reasoner
	store     store.EvaluationStore
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time
}

// Options configure an Orchestrator beyond its collaborators.
type Options struct {
	EvaluationTimeout time.Duration
	Logger            *slog.Logger
	Clock             func() time.Time
}

// New creates an orchestrator.
func New(engine *scoring.Engine, retriever *retrieval.Retriever, r providers.Reasoner, s store.EvaluationStore, opts Options) *Orchestrator {
	if opts.EvaluationTimeout <= 0 {
		opts.EvaluationTimeout = DefaultEvaluationTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Orchestrator{
		engine:    engine,
		retriever: retriever,
		reasoner:  r,
		store:     s,
		logger:    opts.Logger,
		timeout:   opts.EvaluationTimeout,
		now:       opts.Clock,
	}
}

// Validate checks an evaluation request before any work begins.
func Validate(req *domain.EvaluationRequest) error {
	if req == nil {
		return &ValidationError{Field: "request", Message: "is required"}
	}
	if req.Applicant.CustomerID == "" {
		return &ValidationError{Field: "applicant.customer_id", Message: "is required"}
	}
	if req.Applicant.AnnualIncome < 0 {
		return &ValidationError{Field: "applicant.annual_income", Message: "must not be negative"}
	}
	if req.Applicant.MonthlyDebtPayments < 0 {
		return &ValidationError{Field: "applicant.monthly_debt_payments", Message: "must not be negative"}
	}
	if req.Applicant.EmploymentYears < 0 {
		return &ValidationError{Field: "applicant.employment_years", Message: "must not be negative"}
	}
	if req.Applicant.Age < 0 {
		return &ValidationError{Field: "applicant.age", Message: "must not be negative"}
	}
	if req.Application.RequestedLimit < 0 {
		return &ValidationError{Field: "application.requested_limit", Message: "must not be negative"}
	}
	if req.Applicant.CreditScore != 0 && (req.Applicant.CreditScore < 300 || req.Applicant.CreditScore > 850) {
		return &ValidationError{Field: "applicant.credit_score", Message: "must be within [300, 850]"}
	}
	return nil
}

// Evaluate runs the full pipeline for one request. The returned evaluation
// carries the numeric assessment and, when the reasoner cooperates, the
// narrative. Caller cancellation cancels outstanding retrievals but not an
// already-dispatched store write.
func (o *Orchestrator) Evaluate(ctx context.Context, req *domain.EvaluationRequest) (*domain.Evaluation, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	eval := &domain.Evaluation{
		ID:         uuid.NewString(),
		CustomerID: req.Applicant.CustomerID,
		Request:    *req,
		Status:     domain.StatusStarted,
		CreatedAt:  o.now().UTC(),
	}
	logger := o.logger.With("evaluation_id", eval.ID, "customer_id", eval.CustomerID)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	// The three context fetches run concurrently; each degrades to an
	// empty result on its own timeout without stalling the others.
	eval.Status = domain.StatusRetrieving
	var (
		bureau   *domain.BureauSnapshot
		policies []domain.PolicySnippet
		insights []domain.MarketInsight
	)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		bureau = o.retriever.FetchBureauData(ctx, req.Applicant.CustomerID)
	}()
	go func() {
		defer wg.Done()
		policies = o.retriever.FetchPolicyContext(ctx, policyQuery(req), policyTopK, policyMinSimilarity)
	}()
	go func() {
		defer wg.Done()
		insights = o.retriever.FetchMarketInsights(ctx, marketQuery(req), marketTimeFilter)
	}()
	wg.Wait()

	assessment := o.engine.Score(req, bureau, insights)
	eval.Assessment = assessment
	eval.Status = domain.StatusScored
	logger.Info("assessment scored",
		"score", assessment.OverallScore,
		"tier", assessment.Tier,
		"confidence", assessment.Confidence,
		"bureau", bureau != nil,
		"policies", len(policies),
		"insights", len(insights))

	if o.reasoner != nil {
		if narrative := o.enrich(ctx, logger, req, &assessment, bureau, policies, insights); narrative != nil {
			eval.Narrative = narrative
			eval.Status = domain.StatusEnriched
		}
	}

	eval.Status = domain.StatusComplete
	o.persist(eval, logger)
	return eval, nil
}

// enrich calls the reasoner and validates its response. Any failure is
// logged and the numeric assessment stands on its own.
func (o *Orchestrator) enrich(ctx context.Context, logger *slog.Logger, req *domain.EvaluationRequest, assessment *domain.RiskAssessment, bureau *domain.BureauSnapshot, policies []domain.PolicySnippet, insights []domain.MarketInsight) *domain.Narrative {
	prompt := reasoner.BuildPrompt(req, assessment, bureau, policies, insights)

	raw, err := o.reasoner.Analyze(ctx, prompt)
	if err != nil {
		logger.Warn("reasoner call failed, returning numeric assessment only", "error", err)
		return nil
	}
	narrative, err := reasoner.Parse(raw)
	if err != nil {
		logger.Warn("discarding narrative", "error", err)
		return nil
	}
	return narrative
}

// persist hands the evaluation to the store without blocking the caller.
// The write survives caller cancellation; failures are logged, never
// surfaced.
func (o *Orchestrator) persist(eval *domain.Evaluation, logger *slog.Logger) {
	if o.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultSaveTimeout)
		defer cancel()
		if err := o.store.SaveEvaluation(ctx, eval); err != nil {
			logger.Error("failed to persist evaluation", "error", err)
		}
	}()
}

func policyQuery(req *domain.EvaluationRequest) string {
	return fmt.Sprintf("underwriting policy %s requested limit %.0f", req.Application.ProductType, req.Application.RequestedLimit)
}

func marketQuery(req *domain.EvaluationRequest) string {
	if req.Application.ProductType != "" {
		return req.Application.ProductType + " fraud trends"
	}
	return "credit fraud trends"
}
