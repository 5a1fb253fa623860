package shortener

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to an external URL shortener API. Shortening is best
// effort; callers fall back to the raw URL when it fails.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type shortenRequest struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type shortenResponse struct {
	ShortURL string `json:"short_url"`
}

// Shorten returns a shortened form of the given URL.
func (c *Client) Shorten(ctx context.Context, rawURL string) (string, error) {
	reqBody := shortenRequest{
		Key: c.apiKey,
		URL: rawURL,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shortener error: %s", string(bodyBytes))
	}

	var shortResp shortenResponse
	if err := json.Unmarshal(bodyBytes, &shortResp); err != nil {
		return "", err
	}

	if shortResp.ShortURL == "" {
		return "", fmt.Errorf("shortener returned empty url")
	}

	return shortResp.ShortURL, nil
}
