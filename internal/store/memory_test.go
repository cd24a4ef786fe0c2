package store

import (
	"context"
	"testing"
	"time"

	"financefirst/risk-api/internal/domain"
)

func testEvaluation(id, customerID string, createdAt time.Time) *domain.Evaluation {
	return &domain.Evaluation{
		ID:         id,
		CustomerID: customerID,
		Status:     domain.StatusComplete,
		CreatedAt:  createdAt,
		Assessment: domain.RiskAssessment{OverallScore: 40, Tier: domain.TierMedium},
	}
}

func TestSaveAndGetEvaluation(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	now := time.Now()

	if err := s.SaveEvaluation(ctx, testEvaluation("ev-1", "cust-1", now)); err != nil {
		t.Fatalf("SaveEvaluation failed: %v", err)
	}

	got, err := s.GetEvaluation(ctx, "ev-1")
	if err != nil {
		t.Fatalf("GetEvaluation failed: %v", err)
	}
	if got.CustomerID != "cust-1" {
		t.Errorf("customer ID = %s, want cust-1", got.CustomerID)
	}

	if _, err := s.GetEvaluation(ctx, "missing"); err != ErrNotFound {
		t.Errorf("got %v for missing ID, want ErrNotFound", err)
	}
}

func TestSaveEvaluationDuplicate(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	now := time.Now()

	s.SaveEvaluation(ctx, testEvaluation("ev-1", "cust-1", now))
	if err := s.SaveEvaluation(ctx, testEvaluation("ev-1", "cust-2", now)); err != ErrDuplicate {
		t.Errorf("got %v for duplicate ID, want ErrDuplicate", err)
	}
}

func TestListByCustomerNewestFirst(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	s.SaveEvaluation(ctx, testEvaluation("ev-1", "cust-1", base))
	s.SaveEvaluation(ctx, testEvaluation("ev-2", "cust-1", base.Add(time.Hour)))
	s.SaveEvaluation(ctx, testEvaluation("ev-3", "cust-2", base.Add(2*time.Hour)))

	got, err := s.ListByCustomer(ctx, "cust-1")
	if err != nil {
		t.Fatalf("ListByCustomer failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d evaluations, want 2", len(got))
	}
	if got[0].ID != "ev-2" || got[1].ID != "ev-1" {
		t.Errorf("order = [%s, %s], want [ev-2, ev-1]", got[0].ID, got[1].ID)
	}
}

func TestListSince(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	s.SaveEvaluation(ctx, testEvaluation("ev-old", "cust-1", base))
	s.SaveEvaluation(ctx, testEvaluation("ev-new", "cust-1", base.Add(48*time.Hour)))

	got, err := s.ListSince(ctx, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListSince failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ev-new" {
		t.Errorf("got %d evaluations, want only ev-new", len(got))
	}
}

func TestWebhookLifecycle(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	hook := &domain.WebhookConfig{ID: "wh-1", URL: "https://example.com/hook", Threshold: 75, Active: true}
	if err := s.SaveWebhook(ctx, hook); err != nil {
		t.Fatalf("SaveWebhook failed: %v", err)
	}

	hooks, err := s.ListWebhooks(ctx)
	if err != nil {
		t.Fatalf("ListWebhooks failed: %v", err)
	}
	if len(hooks) != 1 {
		t.Fatalf("got %d webhooks, want 1", len(hooks))
	}

	if err := s.DeleteWebhook(ctx, "wh-1"); err != nil {
		t.Errorf("DeleteWebhook failed: %v", err)
	}
	if err := s.DeleteWebhook(ctx, "wh-1"); err != ErrNotFound {
		t.Errorf("got %v for second delete, want ErrNotFound", err)
	}
}
