package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wa-assist/internal/config"
)

// Credentials identifies one tenant's messaging account on the gateway.
// Callers pass them explicitly so the client holds no ambient tenant state.
type Credentials struct {
	PhoneNumberID string
	AccessToken   string
}

// SendResult reports the gateway's answer for one outbound message.
type SendResult struct {
	Success   bool
	MessageID string
	Error     string
}

// Sender delivers rendered chat messages to an end user. The production
// implementation talks to the WhatsApp Cloud gateway; tests swap in a fake.
type Sender interface {
	SendText(ctx context.Context, creds Credentials, to, body string) (*SendResult, error)
}

type textMessage struct {
	MessagingProduct string  `json:"messaging_product"`
	To               string  `json:"to"`
	Type             string  `json:"type"`
	Text             textObj `json:"text"`
}

type textObj struct {
	Body string `json:"body"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg *config.Config) Sender {
	return &Client{
		baseURL: cfg.GatewayURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) SendText(ctx context.Context, creds Credentials, to, body string) (*SendResult, error) {
	msg := textMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textObj{Body: body},
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, creds.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	var decoded sendResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		// Gateway answered with something that is not JSON; treat the raw
		// status as the outcome.
		decoded = sendResponse{}
	}

	if resp.StatusCode >= 400 {
		detail := resp.Status
		if decoded.Error != nil && decoded.Error.Message != "" {
			detail = decoded.Error.Message
		}
		return &SendResult{Success: false, Error: detail}, nil
	}

	result := &SendResult{Success: true}
	if len(decoded.Messages) > 0 {
		result.MessageID = decoded.Messages[0].ID
	}
	return result, nil
}
