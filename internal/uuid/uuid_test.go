// Package uuid provides unit tests for UUID generation and validation.
package uuid

import "testing"

// TestNew tests that New() generates valid UUID v4 strings.
func TestNew(t *testing.T) {
	id := New()
	if id == "" {
		t.Fatal("Expected non-empty UUID string")
	}
	if !IsValid(id) {
		t.Errorf("Generated UUID is not valid v4: %s", id)
	}
}

// TestNew_unique tests that successive UUIDs differ.
func TestNew_unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("Duplicate UUID generated: %s", id)
		}
		seen[id] = true
	}
}

// TestIsValid tests UUID v4 format validation.
func TestIsValid(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"550e8400-e29b-41d4-a716-446655440000", true},
		{"550e8400-e29b-11d4-a716-446655440000", false}, // v1, not v4
		{"550e8400-e29b-41d4-c716-446655440000", false}, // bad variant
		{"not-a-uuid", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsValid(tc.input); got != tc.want {
			t.Errorf("IsValid(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

// TestValidate tests the error-returning validator.
func TestValidate(t *testing.T) {
	if err := Validate(New()); err != nil {
		t.Errorf("Validate() failed for generated UUID: %v", err)
	}
	if err := Validate("bogus"); err == nil {
		t.Error("Expected error for invalid UUID")
	}
}
