package action

import (
	"errors"
	"fmt"
	"time"

	"wa-assist/internal/events"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrValidation marks malformed action configs. It is surfaced at save time
// only; dispatch assumes persisted configs are valid.
var ErrValidation = errors.New("invalid action config")

type ActionType string

const (
	ActionTypeWebhook     ActionType = "webhook"
	ActionTypeChatMessage ActionType = "chat_message"
)

// ActionConfig is one configured automation rule: when an event of kind
// Event occurs (optionally narrowed by TriggerTags or FilterScript), deliver
// to the webhook URL or chat recipient.
type ActionConfig struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID primitive.ObjectID `json:"tenant_id" bson:"tenant_id"`
	Name     string             `json:"name" bson:"name"`
	Type     ActionType         `json:"type" bson:"type"`
	Event    events.Kind        `json:"event" bson:"event"`
	IsActive bool               `json:"is_active" bson:"is_active"`

	// Webhook actions
	URL    string `json:"url,omitempty" bson:"url,omitempty"`
	Secret string `json:"secret,omitempty" bson:"secret,omitempty"` // presence enables signing

	// Chat actions
	Recipient       string `json:"recipient,omitempty" bson:"recipient,omitempty"`
	MessageTemplate string `json:"message_template,omitempty" bson:"message_template,omitempty"`

	// TriggerTags narrows tag_added events; empty means match any tag.
	TriggerTags []string `json:"trigger_tags,omitempty" bson:"trigger_tags,omitempty"`

	// FilterScript is an optional Tengo expression evaluated against the
	// event; it must set `match` truthy for the action to fire.
	FilterScript string `json:"filter_script,omitempty" bson:"filter_script,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Validate enforces the save-time invariant: exactly the type-appropriate
// field group must be populated.
func (a *ActionConfig) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !a.Event.Valid() {
		return fmt.Errorf("%w: unknown event kind %q", ErrValidation, a.Event)
	}

	switch a.Type {
	case ActionTypeWebhook:
		if a.URL == "" {
			return fmt.Errorf("%w: url is required for webhook actions", ErrValidation)
		}
	case ActionTypeChatMessage:
		if a.Recipient == "" {
			return fmt.Errorf("%w: recipient is required for chat actions", ErrValidation)
		}
		if a.MessageTemplate == "" {
			return fmt.Errorf("%w: message_template is required for chat actions", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unsupported action type %q", ErrValidation, a.Type)
	}
	return nil
}

// Target is what the delivery log shows as the destination.
func (a *ActionConfig) Target() string {
	if a.Type == ActionTypeWebhook {
		return a.URL
	}
	return a.Recipient
}

// DeliveryResult captures the outcome of one delivery attempt. It is
// returned synchronously on the test-send path and logged otherwise.
type DeliveryResult struct {
	DeliveryID string    `json:"delivery_id"`
	ActionID   string    `json:"action_id"`
	Success    bool      `json:"success"`
	StatusCode int       `json:"status_code,omitempty"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// DeliveryLog is the persisted record of one production delivery attempt,
// feeding the dashboard log viewer.
type DeliveryLog struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID   primitive.ObjectID `json:"tenant_id" bson:"tenant_id"`
	ActionID   primitive.ObjectID `json:"action_id" bson:"action_id"`
	ActionName string             `json:"action_name" bson:"action_name"`
	ActionType ActionType         `json:"action_type" bson:"action_type"`
	Event      events.Kind        `json:"event" bson:"event"`
	Target     string             `json:"target" bson:"target"`
	DeliveryID string             `json:"delivery_id" bson:"delivery_id"`
	Success    bool               `json:"success" bson:"success"`
	StatusCode int                `json:"status_code,omitempty" bson:"status_code,omitempty"`
	Message    string             `json:"message" bson:"message"`
	Duration   int64              `json:"duration" bson:"duration"` // milliseconds
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}
