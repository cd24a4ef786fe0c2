package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"financefirst/risk-api/internal/domain"
)

// HTTPPolicy queries an embedding-backed policy document search service.
type HTTPPolicy struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPPolicy creates a policy context client.
func NewHTTPPolicy(baseURL, apiKey string, client *http.Client) *HTTPPolicy {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPPolicy{baseURL: baseURL, apiKey: apiKey, client: client}
}

// Query runs a similarity search over policy documents. Both the similarity
// floor and result cap are enforced server-side and re-checked by the
// retriever.
func (p *HTTPPolicy) Query(ctx context.Context, text string, topK int, minSimilarity float64) ([]domain.PolicySnippet, error) {
	body, err := json.Marshal(map[string]any{
		"query":          text,
		"top_k":          topK,
		"min_similarity": minSimilarity,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/query", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("policy search returned status %d", resp.StatusCode)
	}

	var payload struct {
		Results []domain.PolicySnippet `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding policy response: %w", err)
	}
	return payload.Results, nil
}
