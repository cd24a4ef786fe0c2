package providers

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"financefirst/risk-api/internal/domain"
)

// BureauConfig holds connection settings for a credit bureau API.
type BureauConfig struct {
	BaseURL      string
	APIKey       string
	MaxRetries   int
	RetryBackoff time.Duration
}

// DefaultBureauConfig returns development defaults.
func DefaultBureauConfig() BureauConfig {
	return BureauConfig{
		BaseURL:      "https://api.creditbureau.example.com",
		APIKey:       "dev-api-key",
		MaxRetries:   3,
		RetryBackoff: 200 * time.Millisecond,
	}
}

// HTTPBureau calls a credit bureau REST API with retry on transient
// failures. A 404 maps to ErrReportNotFound.
type HTTPBureau struct {
	config BureauConfig
	client *http.Client
}

// NewHTTPBureau creates a bureau client. A nil http.Client falls back to a
// default with no client-side timeout; the caller's context bounds requests.
func NewHTTPBureau(config BureauConfig, client *http.Client) *HTTPBureau {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPBureau{config: config, client: client}
}

// GetReport fetches the customer's credit snapshot, retrying transient
// errors with exponential backoff and jitter.
func (b *HTTPBureau) GetReport(ctx context.Context, customerID string) (*domain.BureauSnapshot, error) {
	if customerID == "" {
		return nil, fmt.Errorf("customer ID is required")
	}

	var lastErr error
	for attempt := 0; attempt <= b.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := b.config.RetryBackoff * (1 << uint(attempt-1))
			jitter := time.Duration(rand.Int63n(int64(backoff)/2 + 1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}

		snapshot, err := b.fetch(ctx, customerID)
		if err == nil {
			return snapshot, nil
		}
		if err == ErrReportNotFound || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("exhausted %d retries: %w", b.config.MaxRetries, lastErr)
}

func (b *HTTPBureau) fetch(ctx context.Context, customerID string) (*domain.BureauSnapshot, error) {
	endpoint := fmt.Sprintf("%s/v1/reports/%s", b.config.BaseURL, url.PathEscape(customerID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+b.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrReportNotFound
	default:
		return nil, fmt.Errorf("bureau returned status %d", resp.StatusCode)
	}

	var snapshot domain.BureauSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decoding bureau response: %w", err)
	}
	return &snapshot, nil
}

// ─── Simulated bureau ─────────────────────────────────────────────────────────

// SimulatedBureau produces deterministic snapshots derived from the customer
// ID hash. Suitable for development and demos; the same customer always gets
// the same credit history.
type SimulatedBureau struct {
	now func() time.Time
}

// NewSimulatedBureau creates a simulated bureau on the wall clock.
func NewSimulatedBureau() *SimulatedBureau {
	return &SimulatedBureau{now: time.Now}
}

// NewSimulatedBureauWithClock fixes the clock, for tests.
func NewSimulatedBureauWithClock(now func() time.Time) *SimulatedBureau {
	return &SimulatedBureau{now: now}
}

// GetReport synthesizes a snapshot from the customer ID. Customer IDs whose
// hash lands in the lowest band report no record at all, exercising the
// unknown-applicant path.
func (s *SimulatedBureau) GetReport(_ context.Context, customerID string) (*domain.BureauSnapshot, error) {
	if customerID == "" {
		return nil, fmt.Errorf("customer ID is required")
	}

	h := sha256.Sum256([]byte(customerID))

	// Roughly 1 in 16 customers has no bureau record.
	if h[31]%16 == 0 {
		return nil, ErrReportNotFound
	}

	score := 300 + int(binary.BigEndian.Uint32(h[:4])%551)
	accountCount := 1 + int(binary.BigEndian.Uint16(h[4:6])%8)
	inquiryCount := int(binary.BigEndian.Uint16(h[6:8]) % 8)
	utilization := float64(h[8]%100) / 100

	history := domain.PaymentHistoryGood
	switch {
	case score < 600:
		history = domain.PaymentHistoryPoor
	case score < 700:
		history = domain.PaymentHistoryFair
	}

	now := s.now()
	accounts := make([]domain.BureauAccount, accountCount)
	for i := range accounts {
		ageMonths := 1 + int(h[9+i%8])%60
		delinquencies := 0
		if score < 640 && i%3 == 0 {
			delinquencies = 1 + int(h[17+i%8])%3
		}
		accounts[i] = domain.BureauAccount{
			OpenedDate:    now.AddDate(0, -ageMonths, 0),
			Delinquencies: delinquencies,
		}
	}

	inquiries := make([]domain.BureauInquiry, inquiryCount)
	for i := range inquiries {
		kind := domain.InquiryHard
		if h[25+i%6]%3 == 0 {
			kind = domain.InquirySoft
		}
		inquiries[i] = domain.BureauInquiry{
			Date: now.AddDate(0, 0, -(7 + int(h[10+i%8])%170)),
			Type: kind,
		}
	}

	return &domain.BureauSnapshot{
		CreditScore: score,
		Summary: domain.AccountSummary{
			CreditUtilization: utilization,
			PaymentHistory:    history,
		},
		Accounts:  accounts,
		Inquiries: inquiries,
	}, nil
}
