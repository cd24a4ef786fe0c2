package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"financefirst/risk-api/internal/domain"
)

// HTTPMarket queries an external news/intelligence search API.
type HTTPMarket struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPMarket creates a market intelligence client.
func NewHTTPMarket(baseURL, apiKey string, client *http.Client) *HTTPMarket {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPMarket{baseURL: baseURL, apiKey: apiKey, client: client}
}

// Search runs a freshness-filtered document search.
func (m *HTTPMarket) Search(ctx context.Context, query, timeFilter string) ([]domain.MarketDocument, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("freshness", normalizeTimeFilter(timeFilter))
	endpoint := fmt.Sprintf("%s/v1/search?%s", m.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market search returned status %d", resp.StatusCode)
	}

	var payload struct {
		Documents []domain.MarketDocument `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding market response: %w", err)
	}
	return payload.Documents, nil
}

// normalizeTimeFilter maps caller filters onto the search API vocabulary.
func normalizeTimeFilter(filter string) string {
	switch strings.ToLower(filter) {
	case "day":
		return "Day"
	case "week":
		return "Week"
	case "year":
		return "Year"
	default:
		return "Month"
	}
}

// ─── Static market provider ───────────────────────────────────────────────────

// StaticMarket serves a fixed document set, loaded once from a JSON file.
// Used in development when no search API credentials are configured.
type StaticMarket struct {
	docs []domain.MarketDocument
}

// NewStaticMarket wraps an in-memory document set.
func NewStaticMarket(docs []domain.MarketDocument) *StaticMarket {
	return &StaticMarket{docs: docs}
}

// LoadStaticMarket reads documents from a JSON file.
func LoadStaticMarket(path string) (*StaticMarket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading market documents: %w", err)
	}
	var docs []domain.MarketDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing market documents: %w", err)
	}
	return &StaticMarket{docs: docs}, nil
}

// Search returns documents whose title or description mentions any query
// term, ignoring the time filter.
func (m *StaticMarket) Search(_ context.Context, query, _ string) ([]domain.MarketDocument, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return m.docs, nil
	}

	var matched []domain.MarketDocument
	for _, doc := range m.docs {
		content := strings.ToLower(doc.Title + " " + doc.Description)
		for _, term := range terms {
			if strings.Contains(content, term) {
				matched = append(matched, doc)
				break
			}
		}
	}
	return matched, nil
}
