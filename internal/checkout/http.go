package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPAuthority talks to the pricing authority's recalculation endpoint.
type HTTPAuthority struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPAuthority(baseURL string) *HTTPAuthority {
	return &HTTPAuthority{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewHTTPAuthorityWithClient lets callers supply their own client, mainly
// for tests.
func NewHTTPAuthorityWithClient(baseURL string, c *http.Client) *HTTPAuthority {
	return &HTTPAuthority{baseURL: strings.TrimRight(baseURL, "/"), httpClient: c}
}

func (a *HTTPAuthority) Recalculate(ctx context.Context, req Request) (*Quote, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("recalculate encode: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/cart/recalculate", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("recalculate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("recalculate request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Surface the server's message when the body carries one.
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Message != "" {
			return nil, fmt.Errorf("recalculate failed: %s", e.Message)
		}
		return nil, fmt.Errorf("recalculate failed: http=%d body=%s", resp.StatusCode, string(raw))
	}

	var quote Quote
	if err := json.Unmarshal(raw, &quote); err != nil {
		return nil, fmt.Errorf("recalculate decode: %w body=%s", err, string(raw))
	}

	return &quote, nil
}
