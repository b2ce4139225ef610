package language

import (
	"slices"
	"testing"
)

func TestDefaultResolve(t *testing.T) {
	table := Default()
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"jpn", "Japanese", true},
		{"eng", "English", true},
		{"spa", "Spanish", true},
		{"und", "Undetermined", true},
		{"fre", "French", true},
		{"fra", "French", true},
		{"ger", "German", true},
		{"chi", "Chinese", true},
		{"dut", "Dutch", true},
		{" JPN ", "Japanese", true},
		{"xyz", "", false},
		{"", "", false},
		{"en", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, ok := table.Resolve(tt.input)
			if ok != tt.ok || name != tt.expected {
				t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.input, name, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestNewTableAddsAndOverrides(t *testing.T) {
	table, err := NewTable(map[string]string{
		"Tha": "thai",
		"eng": "english sdh",
	})
	if err != nil {
		t.Fatalf("NewTable returned error: %v", err)
	}
	if name, ok := table.Resolve("tha"); !ok || name != "Thai" {
		t.Fatalf("expected Thai, got (%q, %v)", name, ok)
	}
	if name, _ := table.Resolve("eng"); name != "English Sdh" {
		t.Fatalf("expected overridden English name, got %q", name)
	}
	if name, _ := Default().Resolve("eng"); name != "English" {
		t.Fatalf("default table must not be affected by extras, got %q", name)
	}
}

func TestNewTableRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name  string
		extra map[string]string
	}{
		{"two letters", map[string]string{"th": "Thai"}},
		{"digits", map[string]string{"t1a": "Thai"}},
		{"empty name", map[string]string{"tha": "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable(tt.extra); err == nil {
				t.Fatalf("expected error for %v", tt.extra)
			}
		})
	}
}

func TestCodesSorted(t *testing.T) {
	codes := Default().Codes()
	if !slices.IsSorted(codes) {
		t.Fatalf("codes not sorted: %v", codes)
	}
	if !slices.Contains(codes, "jpn") || !slices.Contains(codes, "und") {
		t.Fatalf("missing required codes: %v", codes)
	}
}

func TestNilTable(t *testing.T) {
	var table *Table
	if _, ok := table.Resolve("jpn"); ok {
		t.Fatal("nil table should resolve nothing")
	}
}
