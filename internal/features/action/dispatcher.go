package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"wa-assist/internal/config"
	"wa-assist/internal/events"
	"wa-assist/internal/features/chat"
	"wa-assist/pkg/template"

	"github.com/google/uuid"
)

// Dispatcher builds and performs the outbound delivery for matched actions.
// It never returns an error: every failure is captured in the per-action
// DeliveryResult so one broken endpoint cannot affect its siblings.
type Dispatcher struct {
	httpClient *http.Client
	chatSender chat.Sender
}

func NewDispatcher(cfg *config.Config, chatSender chat.Sender) *Dispatcher {
	return &Dispatcher{
		httpClient: &http.Client{Timeout: cfg.DispatchTimeout},
		chatSender: chatSender,
	}
}

// Dispatch delivers one event occurrence to every action concurrently and
// collects all results. Result order matches the input order; completion
// order is unspecified.
func (d *Dispatcher) Dispatch(ctx context.Context, env events.Envelope, actions []ActionConfig, creds chat.Credentials) []DeliveryResult {
	results := make([]DeliveryResult, len(actions))

	var wg sync.WaitGroup
	for i := range actions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = d.Deliver(ctx, env, actions[i], creds)
		}(i)
	}
	wg.Wait()

	return results
}

// Deliver performs a single delivery attempt and reports its outcome.
func (d *Dispatcher) Deliver(ctx context.Context, env events.Envelope, act ActionConfig, creds chat.Credentials) DeliveryResult {
	result := DeliveryResult{
		DeliveryID: uuid.NewString(),
		ActionID:   act.ID.Hex(),
		Timestamp:  time.Now().UTC(),
	}

	switch act.Type {
	case ActionTypeWebhook:
		d.deliverWebhook(ctx, env, act, &result)
	case ActionTypeChatMessage:
		d.deliverChat(ctx, env, act, creds, &result)
	default:
		result.Message = fmt.Sprintf("unsupported action type: %s", act.Type)
	}

	return result
}

func (d *Dispatcher) deliverWebhook(ctx context.Context, env events.Envelope, act ActionConfig, result *DeliveryResult) {
	body, err := json.Marshal(env)
	if err != nil {
		result.Message = fmt.Sprintf("failed to marshal event envelope: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, act.URL, bytes.NewBuffer(body))
	if err != nil {
		result.Message = fmt.Sprintf("failed to create request: %v", err)
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "WA-Assist-Webhook")
	req.Header.Set("X-Assist-Event", string(env.Event))
	req.Header.Set("X-Assist-Delivery", result.DeliveryID)

	if act.Secret != "" {
		// Signature covers the exact bytes on the wire.
		req.Header.Set(SignatureHeader, SignaturePrefix+Sign(act.Secret, body))
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		result.Message = fmt.Sprintf("request failed: %v", err)
		return
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Message = fmt.Sprintf("endpoint returned status %d", resp.StatusCode)
		return
	}

	result.Success = true
	result.Message = fmt.Sprintf("delivered with status %d", resp.StatusCode)
}

func (d *Dispatcher) deliverChat(ctx context.Context, env events.Envelope, act ActionConfig, creds chat.Credentials, result *DeliveryResult) {
	if creds.PhoneNumberID == "" || creds.AccessToken == "" {
		result.Message = "whatsapp gateway is not configured for this workspace"
		return
	}

	text := template.Render(act.MessageTemplate, env.AsMap())

	sendResult, err := d.chatSender.SendText(ctx, creds, act.Recipient, text)
	if err != nil {
		result.Message = fmt.Sprintf("chat send failed: %v", err)
		return
	}
	if !sendResult.Success {
		result.Message = fmt.Sprintf("gateway rejected message: %s", sendResult.Error)
		return
	}

	result.Success = true
	result.Message = fmt.Sprintf("message sent to %s", act.Recipient)
	if sendResult.MessageID != "" {
		result.Message = fmt.Sprintf("message %s sent to %s", sendResult.MessageID, act.Recipient)
	}
}
