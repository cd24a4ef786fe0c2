package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPReasoner calls an external text-generation service that produces
// structured narrative analysis. The raw JSON comes back unvalidated;
// the reasoner package owns schema checking.
type HTTPReasoner struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewHTTPReasoner creates a reasoner client.
func NewHTTPReasoner(baseURL, apiKey, model string, client *http.Client) *HTTPReasoner {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPReasoner{baseURL: baseURL, apiKey: apiKey, model: model, client: client}
}

// Analyze submits the assembled prompt and returns the raw structured
// response.
func (r *HTTPReasoner) Analyze(ctx context.Context, prompt string) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]any{
		"model":           r.model,
		"prompt":          prompt,
		"response_format": "json",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reasoner returned status %d", resp.StatusCode)
	}

	var payload struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding reasoner response: %w", err)
	}
	return payload.Result, nil
}
