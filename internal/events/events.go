package events

import (
	"time"
)

// Kind identifies one business event the assistant can emit. The set is
// closed; producers must not invent kinds at runtime. Unknown kinds are
// silently ignored by action matching.
type Kind string

const (
	ConversationCreated    Kind = "conversation_created"
	ConversationUpdated    Kind = "conversation_updated"
	ConversationEnded      Kind = "conversation_ended"
	MessageReceived        Kind = "message_received"
	MessageSent            Kind = "message_sent"
	HumanSupportRequested  Kind = "human_support_requested"
	AppointmentScheduled   Kind = "appointment_scheduled"
	AppointmentRescheduled Kind = "appointment_rescheduled"
	ClientInfoUpdated      Kind = "client_info_updated"
	LeadQualified          Kind = "lead_qualified"
	KnowledgeMiss          Kind = "knowledge_miss"
	TagAdded               Kind = "tag_added"
	Test                   Kind = "test"
)

var allKinds = map[Kind]bool{
	ConversationCreated:    true,
	ConversationUpdated:    true,
	ConversationEnded:      true,
	MessageReceived:        true,
	MessageSent:            true,
	HumanSupportRequested:  true,
	AppointmentScheduled:   true,
	AppointmentRescheduled: true,
	ClientInfoUpdated:      true,
	LeadQualified:          true,
	KnowledgeMiss:          true,
	TagAdded:               true,
	Test:                   true,
}

// Valid reports whether k is a known event kind.
func (k Kind) Valid() bool {
	return allKinds[k]
}

// Kinds returns every known event kind, for the settings UI dropdown.
func Kinds() []Kind {
	out := make([]Kind, 0, len(allKinds))
	for k := range allKinds {
		out = append(out, k)
	}
	return out
}

// Envelope is the ephemeral representation of one event occurrence. It is
// built fresh on every publish and discarded after dispatch. The tenant id is
// serialized as "userId" because webhook receivers already verify against
// that wire shape.
type Envelope struct {
	Event     Kind           `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	TenantID  string         `json:"userId"`
	Data      map[string]any `json:"data"`
}

// NewEnvelope stamps an envelope for a tenant. A nil data map is normalized
// to an empty object so the wire body always carries "data": {}.
func NewEnvelope(tenantID string, kind Kind, data map[string]any) Envelope {
	if data == nil {
		data = map[string]any{}
	}
	return Envelope{
		Event:     kind,
		Timestamp: time.Now().UTC(),
		TenantID:  tenantID,
		Data:      data,
	}
}

// AsMap exposes the envelope as the generic tree the template renderer walks.
// Keys mirror the JSON wire shape exactly, so template paths work the same
// against rendered chat messages and webhook bodies.
func (e Envelope) AsMap() map[string]any {
	return map[string]any{
		"event":     string(e.Event),
		"timestamp": e.Timestamp.Format(time.RFC3339),
		"userId":    e.TenantID,
		"data":      e.Data,
	}
}

// Tags extracts the tag list a tag_added occurrence carries, used by the
// matcher's tag filter. Producers send either data.tag (single) or data.tags.
func (e Envelope) Tags() []string {
	var tags []string
	if v, ok := e.Data["tag"].(string); ok && v != "" {
		tags = append(tags, v)
	}
	if list, ok := e.Data["tags"].([]string); ok {
		tags = append(tags, list...)
	} else if list, ok := e.Data["tags"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
	}
	return tags
}
