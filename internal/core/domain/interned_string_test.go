package domain_test

import (
	"encoding/json"
	"testing"

	"go.trai.ch/iconsmith/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	s1 := "/themes/mint/apps/96/firefox.svg"
	s2 := "/themes/mint/apps/96/firefox.svg"

	is1 := domain.NewInternedString(s1)
	is2 := domain.NewInternedString(s2)

	if is1.Value() != is2.Value() {
		t.Errorf("Expected handles to be equal for identical strings, got %v and %v", is1.Value(), is2.Value())
	}

	if is1.String() != s1 {
		t.Errorf("Expected String() to return %q, got %q", s1, is1.String())
	}
}

func TestInternedString_Zero(t *testing.T) {
	var is domain.InternedString

	if !is.IsZero() {
		t.Error("Expected zero value to report IsZero")
	}
	if is.String() != "" {
		t.Errorf("Expected empty string for zero value, got %q", is.String())
	}
	if domain.NewInternedString("x").IsZero() {
		t.Error("Expected non-zero value after NewInternedString")
	}
}

func TestInternedStringJSON(t *testing.T) {
	type TestStruct struct {
		Path domain.InternedString `json:"path"`
	}

	original := TestStruct{Path: domain.NewInternedString("icons/edit-copy.svg")}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal struct: %v", err)
	}

	expectedJSON := `{"path":"icons/edit-copy.svg"}`
	if string(data) != expectedJSON {
		t.Errorf("Expected JSON %q, got %q", expectedJSON, string(data))
	}

	var unmarshaled TestStruct
	if err := json.Unmarshal(data, &unmarshaled); err != nil {
		t.Fatalf("Failed to unmarshal struct: %v", err)
	}

	if unmarshaled.Path != original.Path {
		t.Errorf("Expected unmarshaled path %q, got %q", original.Path.String(), unmarshaled.Path.String())
	}
}
