package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePresets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write presets: %v", err)
	}
	return path
}

func TestDefaultPresets(t *testing.T) {
	presets := DefaultPresets()
	if len(presets) != 4 {
		t.Fatalf("Expected 4 default presets, got %d", len(presets))
	}
	if err := ValidatePresets(presets); err != nil {
		t.Errorf("Default presets are invalid: %v", err)
	}
	if presets[3].Selector != ".//*" {
		t.Errorf("Expected last preset to cover all elements, got %q", presets[3].Selector)
	}
}

func TestLoadPresets(t *testing.T) {
	path := writePresets(t, `
presets:
  - artifact: units.json
    selector: .//standardUnit
  - artifact: types.json
    selector: ".//numberType"
`)

	presets, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("LoadPresets failed: %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("Expected 2 presets, got %d", len(presets))
	}
	if presets[0].Artifact != "units.json" || presets[0].Selector != ".//standardUnit" {
		t.Errorf("Unexpected first preset: %+v", presets[0])
	}
	if presets[1].Selector != ".//numberType" {
		t.Errorf("Unexpected second preset: %+v", presets[1])
	}
}

func TestLoadPresets_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty", "presets: []\n", "no presets defined"},
		{"missing selector", "presets:\n  - artifact: a.json\n", "selector cannot be empty"},
		{"missing artifact", "presets:\n  - selector: .//x\n", "artifact cannot be empty"},
		{"duplicate", "presets:\n  - {artifact: a.json, selector: x}\n  - {artifact: a.json, selector: y}\n", "duplicate artifact"},
		{"malformed", "presets: [unclosed\n", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPresets(writePresets(t, tt.content))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestLoadPresets_MissingFile(t *testing.T) {
	_, err := LoadPresets(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read presets") {
		t.Errorf("Expected read error, got %v", err)
	}
}
