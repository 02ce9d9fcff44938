package mappings

import (
	"encoding/json"
	"testing"
)

func TestNewTriageResultsMapping(t *testing.T) {
	m := NewTriageResultsMapping()

	if err := m.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if m.Settings != DefaultSettings() {
		t.Errorf("expected default settings, got %+v", m.Settings)
	}
	if got := m.Mappings.Properties.RunID.Type; got != "keyword" {
		t.Errorf("run_id type = %q, want keyword", got)
	}
	if got := m.Mappings.Properties.Review.Properties.Text.Analyzer; got != "standard" {
		t.Errorf("review text analyzer = %q, want standard", got)
	}
	if got := m.Mappings.Properties.ArchivedAt.Type; got != "date" {
		t.Errorf("archived_at type = %q, want date", got)
	}
}

func TestTriageResultsMappingJSON(t *testing.T) {
	m := NewTriageResultsMapping()

	raw, err := m.GetJSON()
	if err != nil {
		t.Fatalf("GetJSON returned error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("GetJSON produced invalid JSON: %v", err)
	}
	if _, ok := decoded["settings"]; !ok {
		t.Error("JSON missing settings section")
	}
	if _, ok := decoded["mappings"]; !ok {
		t.Error("JSON missing mappings section")
	}
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name     string
		settings BaseSettings
		wantErr  bool
	}{
		{"defaults", DefaultSettings(), false},
		{"zero shards", BaseSettings{NumberOfShards: 0, NumberOfReplicas: 1}, true},
		{"negative replicas", BaseSettings{NumberOfShards: 1, NumberOfReplicas: -1}, true},
		{"no replicas", BaseSettings{NumberOfShards: 3, NumberOfReplicas: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSettings(tt.settings)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSettings(%+v) error = %v, wantErr %v", tt.settings, err, tt.wantErr)
			}
		})
	}
}
