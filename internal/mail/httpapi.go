package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// APIClient sends OTP mail via a transactional mail HTTP API.
// The provider is expected to accept a JSON POST with the fields below and
// render its own template; no HTML is built here.
type APIClient struct {
	APIKey     string
	BaseURL    string
	Sender     string
	HTTPClient *http.Client
}

// NewAPIClient returns a client that uses the given API key, endpoint, and From address.
func NewAPIClient(apiKey, baseURL, sender string) *APIClient {
	if baseURL == "" {
		baseURL = "https://api.mailsend.dev/v1/send"
	}
	return &APIClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Sender:     sender,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Send posts the OTP to the mail API. Does not log the code.
func (c *APIClient) Send(ctx context.Context, to, code, kind string) error {
	if c.APIKey == "" {
		return fmt.Errorf("mail: API key not configured")
	}
	body := map[string]interface{}{
		"from":     c.Sender,
		"to":       to,
		"template": "otp-" + kind,
		"variables": map[string]string{
			"code": code,
		},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
