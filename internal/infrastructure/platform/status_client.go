// Package platform talks to the advertising platform's status endpoint.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront-relay/internal/domain"
)

const (
	statusTimeout = 45 * time.Second
	maxRedirects  = 5
)

// StatusClient posts link status notifications to the platform
type StatusClient struct {
	client *http.Client
}

// NewStatusClient creates a StatusClient. A nil httpClient gets a 45-second
// timeout and follows at most five redirects.
func NewStatusClient(httpClient *http.Client) *StatusClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: statusTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errors.New("stopped after 5 redirects")
				}
				return nil
			},
		}
	}
	return &StatusClient{client: httpClient}
}

// SendStatus posts the notification as JSON to endpoint
func (c *StatusClient) SendStatus(ctx context.Context, endpoint string, status domain.StatusNotification) error {
	body, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("status: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("status: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("status: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
