package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Slot is one bookable interval at a restaurant, as reported by the
// external reservation service.
type Slot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Seats     int       `json:"seats"`
	Available bool      `json:"available"`
}

// Client fetches bookable slots for a restaurant and date.
type Client interface {
	Slots(ctx context.Context, restaurantID string, date time.Time) ([]Slot, error)
}

// RemarkedClient talks to the Remarked reservation API.
type RemarkedClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewRemarkedClient(baseURL, apiKey string) *RemarkedClient {
	return &RemarkedClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func NewRemarkedClientWithHTTP(baseURL, apiKey string, c *http.Client) *RemarkedClient {
	return &RemarkedClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, httpClient: c}
}

func (c *RemarkedClient) Slots(ctx context.Context, restaurantID string, date time.Time) ([]Slot, error) {
	q := url.Values{}
	q.Set("restaurant", restaurantID)
	q.Set("date", date.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/slots?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("slots request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slots request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("slots failed: http=%d body=%s", resp.StatusCode, string(raw))
	}

	var res struct {
		Slots []Slot `json:"slots"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("slots decode: %w", err)
	}

	return res.Slots, nil
}
