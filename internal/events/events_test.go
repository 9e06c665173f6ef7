package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEnvelopeWireShape(t *testing.T) {
	env := Envelope{
		Event:     AppointmentScheduled,
		Timestamp: time.Date(2024, 12, 25, 10, 0, 0, 0, time.UTC),
		TenantID:  "tenant-1",
		Data: map[string]any{
			"appointment": map[string]any{"serviceName": "Haircut"},
		},
	}

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Receivers verify against the legacy wire field names.
	if decoded["event"] != "appointment_scheduled" {
		t.Errorf("event = %v", decoded["event"])
	}
	if decoded["userId"] != "tenant-1" {
		t.Errorf("userId = %v", decoded["userId"])
	}
	if _, ok := decoded["tenantId"]; ok {
		t.Error("tenant id must serialize as userId, not tenantId")
	}
	if _, ok := decoded["data"].(map[string]any); !ok {
		t.Error("data must serialize as an object")
	}
}

func TestNewEnvelopeNormalizesNilData(t *testing.T) {
	env := NewEnvelope("tenant-1", Test, nil)
	if env.Data == nil {
		t.Fatal("nil data should be normalized to an empty map")
	}
}

func TestTags(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want []string
	}{
		{"single tag", map[string]any{"tag": "VIP"}, []string{"VIP"}},
		{"tag list", map[string]any{"tags": []string{"VIP", "Budget"}}, []string{"VIP", "Budget"}},
		{"json decoded list", map[string]any{"tags": []any{"VIP"}}, []string{"VIP"}},
		{"no tags", map[string]any{"other": 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := NewEnvelope("t", TagAdded, tt.data)
			got := env.Tags()
			if len(got) != len(tt.want) {
				t.Fatalf("Tags() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Tags()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSamplePayloadCoversEveryKind(t *testing.T) {
	for _, kind := range Kinds() {
		data := SamplePayload(kind, nil)
		if data == nil {
			t.Errorf("SamplePayload(%s) returned nil", kind)
			continue
		}
		if _, ok := data["clientData"].(map[string]any); !ok {
			t.Errorf("SamplePayload(%s) missing clientData object", kind)
		}
	}
}

func TestSamplePayloadTagAddedUsesGivenTags(t *testing.T) {
	data := SamplePayload(TagAdded, []string{"Budget"})
	if data["tag"] != "Budget" {
		t.Errorf("tag = %v, want Budget", data["tag"])
	}

	env := NewEnvelope("t", TagAdded, data)
	tags := env.Tags()
	found := false
	for _, tag := range tags {
		if tag == "Budget" {
			found = true
		}
	}
	if !found {
		t.Errorf("Tags() = %v, want to contain Budget", tags)
	}
}

func TestKindValid(t *testing.T) {
	if !TagAdded.Valid() {
		t.Error("tag_added should be valid")
	}
	if Kind("made_up").Valid() {
		t.Error("unknown kind should be invalid")
	}
}
