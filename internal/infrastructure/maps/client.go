package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/nortavo/dispatch/internal/domain"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com"
	DefaultTimeout = 5 * time.Second
)

// Estimate is the route projection used to price and schedule a ride.
type Estimate struct {
	DistanceKm      float64
	DurationMinutes float64
}

type Estimator interface {
	Estimate(ctx context.Context, origin, destination domain.GeoPoint) (*Estimate, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// GoogleClient calls the Distance Matrix API.
type GoogleClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGoogleClient(cfg Config) *GoogleClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &GoogleClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value float64 `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Value float64 `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

func (c *GoogleClient) Estimate(ctx context.Context, origin, destination domain.GeoPoint) (*Estimate, error) {
	query := url.Values{}
	query.Set("origins", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	query.Set("destinations", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))
	query.Set("key", c.apiKey)

	endpoint := c.baseURL + "/maps/api/distancematrix/json?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("distance matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("distance matrix returned status %d", resp.StatusCode)
	}

	var matrix distanceMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&matrix); err != nil {
		return nil, fmt.Errorf("failed to decode distance matrix response: %w", err)
	}

	if len(matrix.Rows) == 0 || len(matrix.Rows[0].Elements) == 0 {
		return nil, fmt.Errorf("distance matrix returned no elements (status %q)", matrix.Status)
	}

	element := matrix.Rows[0].Elements[0]
	if element.Status != "OK" {
		return nil, fmt.Errorf("no route between points: %s", element.Status)
	}

	return &Estimate{
		DistanceKm:      element.Distance.Value / 1000,
		DurationMinutes: element.Duration.Value / 60,
	}, nil
}
