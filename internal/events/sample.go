package events

// SamplePayload returns the representative data object for one event kind,
// used by the test-send flow so an operator can preview wiring before going
// live. Shapes must be kept in sync with what the real producers emit; the
// renderer and webhook receivers see exactly these paths.
func SamplePayload(kind Kind, tags []string) map[string]any {
	client := map[string]any{
		"name":  "Ana Souza",
		"phone": "5511999999999",
		"email": "ana.souza@example.com",
	}

	switch kind {
	case ConversationCreated, ConversationUpdated:
		return map[string]any{
			"conversationId": "conv_sample_01",
			"channel":        "whatsapp",
			"clientData":     client,
		}
	case ConversationEnded:
		return map[string]any{
			"conversationId": "conv_sample_01",
			"reason":         "resolved",
			"messageCount":   12,
			"clientData":     client,
		}
	case MessageReceived, MessageSent:
		return map[string]any{
			"conversationId": "conv_sample_01",
			"message": map[string]any{
				"text": "Oi! Gostaria de agendar um horário.",
				"type": "text",
			},
			"clientData": client,
		}
	case HumanSupportRequested:
		return map[string]any{
			"conversationId": "conv_sample_01",
			"reason":         "client asked for a human",
			"clientData":     client,
		}
	case AppointmentScheduled, AppointmentRescheduled:
		return map[string]any{
			"appointment": map[string]any{
				"serviceName": "Haircut",
				"date":        "25/12/2024",
				"time":        "14:30",
				"durationMin": 45,
			},
			"clientData": client,
		}
	case ClientInfoUpdated:
		return map[string]any{
			"updatedFields": []string{"email"},
			"clientData":    client,
		}
	case LeadQualified:
		return map[string]any{
			"conversationId": "conv_sample_01",
			"score":          "hot",
			"interest":       "Haircut",
			"clientData":     client,
		}
	case KnowledgeMiss:
		return map[string]any{
			"conversationId": "conv_sample_01",
			"question":       "Do you do home visits?",
			"clientData":     client,
		}
	case TagAdded:
		if len(tags) == 0 {
			tags = []string{"VIP"}
		}
		return map[string]any{
			"conversationId": "conv_sample_01",
			"tag":            tags[0],
			"tags":           tags,
			"clientData":     client,
		}
	case Test:
		return map[string]any{
			"message":    "This is a test event.",
			"clientData": client,
		}
	default:
		return map[string]any{
			"clientData": client,
		}
	}
}
