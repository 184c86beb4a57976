package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a client for the AI triage provider API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type triageRequest struct {
	Text string `json:"text"`
}

// Triage sends one patient message to the provider and returns the parsed
// payload along with the raw body. The raw body is returned even when
// parsing fails (ErrMalformedPayload) so the caller can store it for the
// human-review queue.
func (c *Client) Triage(ctx context.Context, text string) (*Payload, []byte, error) {
	reqBody, err := json.Marshal(triageRequest{Text: text})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal triage request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/triage", bytes.NewReader(reqBody))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create triage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, raw, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(raw))
	}

	payload, err := ParsePayload(raw)
	if err != nil {
		return nil, raw, err
	}
	return payload, raw, nil
}
