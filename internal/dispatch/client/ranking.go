package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
)

// ServicemanPayload is one candidate in the ranking request.
type ServicemanPayload struct {
	ID          string   `json:"id"`
	FullName    string   `json:"full_name"`
	BaseCost    float64  `json:"base_cost"`
	Rating      float64  `json:"rating"`
	LocationLat *float64 `json:"location_lat"`
	LocationLng *float64 `json:"location_lng"`
}

// PredictRequest is the payload the Ranking Service scores.
type PredictRequest struct {
	UserLat     float64             `json:"user_lat"`
	UserLng     float64             `json:"user_lng"`
	ServiceType string              `json:"service_type"`
	Servicemen  []ServicemanPayload `json:"servicemen"`
}

// RankedServiceman is one entry of the ranked response, returned to the
// caller verbatim.
type RankedServiceman struct {
	ID           string  `json:"id"`
	FullName     string  `json:"full_name"`
	DistanceKm   float64 `json:"distance_km"`
	BaseCost     float64 `json:"base_cost"`
	Rating       float64 `json:"rating"`
	ETAPredicted float64 `json:"eta_predicted"`
	LocationLat  float64 `json:"location_lat"`
	LocationLng  float64 `json:"location_lng"`
}

type predictResponse struct {
	Results []RankedServiceman `json:"results"`
}

// RankingClient talks to the external Ranking Service. Calls are bounded by
// the configured timeout; any failure surfaces as ErrRankingUnavailable and
// is never retried here.
type RankingClient struct {
	url    string
	client *http.Client
}

func NewRankingClient(url string, timeout time.Duration) *RankingClient {
	return &RankingClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *RankingClient) Rank(ctx context.Context, payload PredictRequest) ([]RankedServiceman, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ranking payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create ranking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrRankingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d, body: %s",
			apperr.ErrRankingUnavailable, resp.StatusCode, raw)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", apperr.ErrRankingUnavailable, err)
	}

	return out.Results, nil
}
