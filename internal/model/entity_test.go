package model

import "testing"

// TestIsValidEntityName tests the entity name noise filter.
func TestIsValidEntityName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "proper noun phrase", input: "Apple Inc", expected: true},
		{name: "mixed case term", input: "iPhone", expected: true},
		{name: "currency amount", input: "$450,000", expected: true},
		{name: "count phrase", input: "3 bedrooms", expected: true},
		{name: "street address", input: "123 Main St", expected: true},
		{name: "too short", input: "AI", expected: false},
		{name: "two letters lower", input: "ok", expected: false},
		{name: "all uppercase", input: "HOME", expected: false},
		{name: "purely numeric", input: "2024", expected: false},
		{name: "numeric with separators", input: "1,250.00", expected: false},
		{name: "exactly 49 characters", input: "Abcdefghij Abcdefghij Abcdefghij Abcdefghij Abcde", expected: true},
		{name: "50 characters", input: "Abcdefghij Abcdefghij Abcdefghij Abcdefghij Abcdef", expected: false},
		{name: "surrounding whitespace", input: " Apple ", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsValidEntityName(tt.input); got != tt.expected {
				t.Errorf("IsValidEntityName(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

// TestEntityRef verifies that Ref carries the name only.
func TestEntityRef(t *testing.T) {
	t.Parallel()

	e := Entity{Name: "Bluetooth", Description: "Technical term"}
	if ref := e.Ref(); ref.Name != "Bluetooth" {
		t.Errorf("expected ref name Bluetooth, got %q", ref.Name)
	}
}
