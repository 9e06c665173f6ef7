package action

import (
	"errors"
	"testing"

	"wa-assist/internal/events"
)

func TestActionConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		action  ActionConfig
		wantErr bool
	}{
		{
			name: "valid webhook",
			action: ActionConfig{
				Name:  "notify",
				Type:  ActionTypeWebhook,
				Event: events.LeadQualified,
				URL:   "https://example.com/hook",
			},
		},
		{
			name: "valid chat message",
			action: ActionConfig{
				Name:            "alert owner",
				Type:            ActionTypeChatMessage,
				Event:           events.AppointmentScheduled,
				Recipient:       "5511999999999",
				MessageTemplate: "New booking: {{data.appointment.serviceName}}",
			},
		},
		{
			name: "webhook without url",
			action: ActionConfig{
				Name:  "notify",
				Type:  ActionTypeWebhook,
				Event: events.LeadQualified,
			},
			wantErr: true,
		},
		{
			name: "chat without recipient",
			action: ActionConfig{
				Name:            "alert",
				Type:            ActionTypeChatMessage,
				Event:           events.Test,
				MessageTemplate: "hi",
			},
			wantErr: true,
		},
		{
			name: "chat without template",
			action: ActionConfig{
				Name:      "alert",
				Type:      ActionTypeChatMessage,
				Event:     events.Test,
				Recipient: "5511999999999",
			},
			wantErr: true,
		},
		{
			name: "missing name",
			action: ActionConfig{
				Type:  ActionTypeWebhook,
				Event: events.Test,
				URL:   "https://example.com",
			},
			wantErr: true,
		},
		{
			name: "unknown event kind",
			action: ActionConfig{
				Name:  "notify",
				Type:  ActionTypeWebhook,
				Event: events.Kind("invented_event"),
				URL:   "https://example.com",
			},
			wantErr: true,
		},
		{
			name: "unknown action type",
			action: ActionConfig{
				Name:  "notify",
				Type:  ActionType("email"),
				Event: events.Test,
				URL:   "https://example.com",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.action.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("validation errors must wrap ErrValidation, got %v", err)
			}
		})
	}
}

func TestActionConfigTarget(t *testing.T) {
	hook := ActionConfig{Type: ActionTypeWebhook, URL: "https://example.com/hook"}
	if hook.Target() != "https://example.com/hook" {
		t.Errorf("webhook target = %s", hook.Target())
	}

	msg := ActionConfig{Type: ActionTypeChatMessage, Recipient: "5511999999999"}
	if msg.Target() != "5511999999999" {
		t.Errorf("chat target = %s", msg.Target())
	}
}
