package template

import "testing"

func TestRender(t *testing.T) {
	payload := map[string]any{
		"event":  "appointment_scheduled",
		"userId": "tenant-1",
		"data": map[string]any{
			"appointment": map[string]any{
				"serviceName": "Haircut",
				"date":        "25/12/2024",
				"durationMin": 45,
			},
			"clientData": map[string]any{
				"name":  "Ana",
				"phone": "5511999999999",
			},
			"empty": nil,
		},
	}

	tests := []struct {
		name string
		tpl  string
		want string
	}{
		{
			name: "single placeholder",
			tpl:  "Hi {{data.clientData.name}}!",
			want: "Hi Ana!",
		},
		{
			name: "multiple placeholders",
			tpl:  "{{data.appointment.serviceName}} on {{data.appointment.date}}",
			want: "Haircut on 25/12/2024",
		},
		{
			name: "numeric leaf",
			tpl:  "Takes {{data.appointment.durationMin}} minutes",
			want: "Takes 45 minutes",
		},
		{
			name: "missing path renders empty",
			tpl:  "Hello {{data.clientData.email}}.",
			want: "Hello .",
		},
		{
			name: "missing root segment renders empty",
			tpl:  "[{{nope.deep.path}}]",
			want: "[]",
		},
		{
			name: "nil value renders empty",
			tpl:  "[{{data.empty}}]",
			want: "[]",
		},
		{
			name: "path through a scalar renders empty",
			tpl:  "[{{data.clientData.name.first}}]",
			want: "[]",
		},
		{
			name: "whitespace inside delimiters",
			tpl:  "Hi {{ data.clientData.name }}",
			want: "Hi Ana",
		},
		{
			name: "top level field",
			tpl:  "event={{event}}",
			want: "event=appointment_scheduled",
		},
		{
			name: "no placeholders",
			tpl:  "plain text",
			want: "plain text",
		},
		{
			name: "empty template",
			tpl:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.tpl, payload)
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderNilPayload(t *testing.T) {
	got := Render("Hi {{data.name}}", nil)
	if got != "Hi " {
		t.Errorf("Render() with nil payload = %q, want %q", got, "Hi ")
	}
}

func TestLookup(t *testing.T) {
	payload := map[string]any{
		"a": map[string]any{"b": "c"},
	}

	if v, ok := Lookup(payload, "a.b"); !ok || v != "c" {
		t.Errorf("Lookup(a.b) = %v, %v", v, ok)
	}
	if _, ok := Lookup(payload, "a.b.c"); ok {
		t.Error("Lookup through scalar should miss")
	}
	if _, ok := Lookup(payload, "x"); ok {
		t.Error("Lookup of missing key should miss")
	}
}
