package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tripdesk/backend/internal/config"
)

// PlaceResult is a normalized hit from the external places/autocomplete API.
type PlaceResult struct {
	PlaceRef    string `json:"place_ref"`
	Line1       string `json:"line1"`
	PostalCode  string `json:"postal_code"`
	CityName    string `json:"city"`
	StateName   string `json:"state"`
	CountryName string `json:"country"`
	CountryCode string `json:"country_code"`
}

// PlacesClient is the external geocoding/autocomplete source. The business
// logic downstream of it is plain get-or-create.
type PlacesClient interface {
	Search(ctx context.Context, query string) ([]PlaceResult, error)
}

type httpPlacesClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewPlacesClient(cfg config.PlacesConfig) PlacesClient {
	return &httpPlacesClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *httpPlacesClient) Search(ctx context.Context, query string) ([]PlaceResult, error) {
	u := fmt.Sprintf("%s/search?q=%s", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("places request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places search: status %d", resp.StatusCode)
	}

	var out struct {
		Results []PlaceResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("places decode: %w", err)
	}
	return out.Results, nil
}
