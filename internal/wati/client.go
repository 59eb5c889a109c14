// Package wati is a client for the Wati WhatsApp API, used to deliver query
// responses back to users and to manage the inbound message webhook.
package wati

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

// DefaultBaseURL is the hosted Wati API endpoint.
const DefaultBaseURL = "https://api.wati.io/api/v1"

// Client communicates with the Wati API over HTTP using bearer auth.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client. An empty baseURL selects the hosted endpoint.
func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SendSessionMessage sends a plain text message to a WhatsApp number within
// the active session window.
func (c *Client) SendSessionMessage(ctx context.Context, whatsappNumber, text string) error {
	body := map[string]string{"messageText": text}
	path := "/sendSessionMessage/" + whatsappNumber
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// TemplateParameter is one positional value for a template message.
type TemplateParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SendTemplateMessage sends a pre-approved template message, used outside
// the 24-hour session window.
func (c *Client) SendTemplateMessage(ctx context.Context, whatsappNumber, templateName string, params []string) error {
	parameters := make([]TemplateParameter, len(params))
	for i, p := range params {
		parameters[i] = TemplateParameter{Name: fmt.Sprintf("{{%d}}", i+1), Value: p}
	}
	body := map[string]any{
		"whatsappNumber": whatsappNumber,
		"templateName":   templateName,
		"broadcastName":  fmt.Sprintf("qbot_%s_%s", templateName, whatsappNumber),
		"parameters":     parameters,
	}
	return c.do(ctx, http.MethodPost, "/sendTemplateMessage", body, nil)
}

// CreateWebhook registers webhookURL for the given event subscriptions.
func (c *Client) CreateWebhook(ctx context.Context, webhookURL string, events []string) error {
	body := map[string]any{
		"webhookUrl":    webhookURL,
		"subscriptions": events,
	}
	return c.do(ctx, http.MethodPost, "/createCustomWebhook", body, nil)
}

// DeleteWebhook removes the registered webhook.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/deleteWebhook", nil, nil)
}

// do issues one API call and optionally decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling wati %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("wati %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding wati response: %w", err)
		}
	}
	return nil
}
