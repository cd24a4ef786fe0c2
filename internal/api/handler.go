package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"financefirst/risk-api/internal/domain"
	"financefirst/risk-api/internal/orchestrator"
	"financefirst/risk-api/internal/scoring"
	"financefirst/risk-api/internal/store"
	"financefirst/risk-api/internal/webhook"
)

// Handler holds the dependencies shared across all HTTP handlers.
type Handler struct {
	pool     *orchestrator.Pool
	store    store.EvaluationStore
	engine   *scoring.Engine
	notifier *webhook.Notifier
}

// NewHandler creates a Handler wired to the given dependencies.
func NewHandler(p *orchestrator.Pool, s store.EvaluationStore, e *scoring.Engine, n *webhook.Notifier) *Handler {
	return &Handler{pool: p, store: s, engine: e, notifier: n}
}

// ─── POST /api/v1/evaluations ─────────────────────────────────────────────────

// SubmitEvaluation accepts an evaluation request, runs the full pipeline on
// the worker pool, and returns the completed evaluation synchronously.
func (h *Handler) SubmitEvaluation(w http.ResponseWriter, r *http.Request) {
	var req domain.EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return
	}

	eval, err := h.pool.Submit(r.Context(), &req)
	if err != nil {
		var verr *orchestrator.ValidationError
		switch {
		case errors.As(err, &verr):
			badRequest(w, "VALIDATION_ERROR", verr.Error())
		case errors.Is(err, r.Context().Err()) && r.Context().Err() != nil:
			unavailable(w, "evaluation cancelled")
		default:
			internalError(w)
		}
		return
	}

	// Fire async webhook notifications for high-risk assessments.
	h.notifier.NotifyAsync(eval)

	created(w, eval)
}

// ─── GET /api/v1/evaluations/{id} ─────────────────────────────────────────────

// GetEvaluation retrieves a previously completed evaluation by its ID.
func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	eval, err := h.store.GetEvaluation(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w, fmt.Sprintf("evaluation '%s' not found", id))
			return
		}
		internalError(w)
		return
	}
	ok(w, eval)
}

// ─── GET /api/v1/customers/{id}/evaluations ──────────────────────────────────

// ListCustomerEvaluations returns a customer's evaluation history, newest
// first.
func (h *Handler) ListCustomerEvaluations(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")
	evals, err := h.store.ListByCustomer(r.Context(), customerID)
	if err != nil {
		internalError(w)
		return
	}
	ok(w, map[string]any{
		"customer_id": customerID,
		"count":       len(evals),
		"evaluations": evals,
	})
}

// ─── GET /api/v1/reports/risk-summary ────────────────────────────────────────

// GetRiskSummary aggregates evaluations over a look-back window into a
// portfolio-level risk report.
//
// Query params:
//   days — look-back window in days (default: 30, max: 365)
func (h *Handler) GetRiskSummary(w http.ResponseWriter, r *http.Request) {
	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 1 || parsed > 365 {
			badRequest(w, "INVALID_PARAM", "days must be an integer between 1 and 365")
			return
		}
		days = parsed
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	evals, err := h.store.ListSince(r.Context(), since)
	if err != nil {
		internalError(w)
		return
	}

	ok(w, buildRiskReport(evals, days))
}

// buildRiskReport rolls evaluations up into tier counts, averages, and the
// most frequent risk factors.
func buildRiskReport(evals []*domain.Evaluation, days int) domain.RiskReport {
	report := domain.RiskReport{
		GeneratedAt: time.Now().UTC(),
		Period:      fmt.Sprintf("%dd", days),
	}
	report.Summary.TotalEvaluations = len(evals)
	if len(evals) == 0 {
		return report
	}

	type factorKey struct{ name, severity string }
	factorCounts := make(map[factorKey]int)

	var scoreSum, confidenceSum float64
	for _, eval := range evals {
		scoreSum += eval.Assessment.OverallScore
		confidenceSum += eval.Assessment.Confidence
		switch eval.Assessment.Tier {
		case domain.TierCritical:
			report.Summary.CriticalCount++
		case domain.TierHigh:
			report.Summary.HighCount++
		case domain.TierMedium:
			report.Summary.MediumCount++
		default:
			report.Summary.LowCount++
		}
		for _, f := range eval.Assessment.Factors {
			factorCounts[factorKey{f.Name, f.Severity}]++
		}
	}
	report.Summary.AvgRiskScore = scoreSum / float64(len(evals))
	report.Summary.AvgConfidence = confidenceSum / float64(len(evals))

	for key, count := range factorCounts {
		report.TopFactors = append(report.TopFactors, domain.FactorCount{
			Name:     key.name,
			Severity: key.severity,
			Count:    count,
		})
	}
	sort.Slice(report.TopFactors, func(i, j int) bool {
		if report.TopFactors[i].Count != report.TopFactors[j].Count {
			return report.TopFactors[i].Count > report.TopFactors[j].Count
		}
		return report.TopFactors[i].Name < report.TopFactors[j].Name
	})
	if len(report.TopFactors) > 5 {
		report.TopFactors = report.TopFactors[:5]
	}
	return report
}

// ─── GET /api/v1/model ───────────────────────────────────────────────────────

// GetModelInfo exposes the scoring model metadata for audit purposes.
func (h *Handler) GetModelInfo(w http.ResponseWriter, _ *http.Request) {
	ok(w, h.engine.ModelInfo())
}

// ─── Webhooks ────────────────────────────────────────────────────────────────

type webhookRequest struct {
	URL       string  `json:"url"`
	Threshold float64 `json:"threshold"`
}

// RegisterWebhook subscribes a URL to high-risk assessment notifications.
func (h *Handler) RegisterWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		badRequest(w, "INVALID_URL", "url must be an absolute http(s) URL")
		return
	}
	if req.Threshold < 0 || req.Threshold > 100 {
		badRequest(w, "INVALID_THRESHOLD", "threshold must be within [0, 100]")
		return
	}

	hook := &domain.WebhookConfig{
		ID:        uuid.NewString(),
		URL:       req.URL,
		Threshold: req.Threshold,
		CreatedAt: time.Now().UTC(),
		Active:    true,
	}
	if err := h.store.SaveWebhook(r.Context(), hook); err != nil {
		internalError(w)
		return
	}
	created(w, hook)
}

// ListWebhooks returns all registered webhook subscriptions.
func (h *Handler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	hooks, err := h.store.ListWebhooks(r.Context())
	if err != nil {
		internalError(w)
		return
	}
	ok(w, hooks)
}

// DeleteWebhook removes a webhook subscription.
func (h *Handler) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteWebhook(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w, fmt.Sprintf("webhook '%s' not found", id))
			return
		}
		internalError(w)
		return
	}
	noContent(w)
}
