package utils

import (
	"testing"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Already uppercase", "COMPLETED", "COMPLETED"},
		{"Lowercase", "completed", "COMPLETED"},
		{"Mixed case", "Pending_Approval", "PENDING_APPROVAL"},
		{"Surrounding whitespace", "  approved  ", "APPROVED"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeStatus(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeStatus(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		expectError bool
	}{
		{"Present", "value", false},
		{"Empty", "", true},
		{"Whitespace only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired("field", tt.value)
			if (err != nil) != tt.expectError {
				t.Errorf("ValidateRequired(field, %q) error = %v, expectError %v", tt.value, err, tt.expectError)
			}
		})
	}
}

func TestValidateMaxLength(t *testing.T) {
	if err := ValidateMaxLength("field", "abc", 3); err != nil {
		t.Errorf("expected length 3 to pass with max 3, got %v", err)
	}
	if err := ValidateMaxLength("field", "abcd", 3); err == nil {
		t.Error("expected length 4 to fail with max 3")
	}
}

func TestValidateMinLength(t *testing.T) {
	if err := ValidateMinLength("field", "abc", 3); err != nil {
		t.Errorf("expected length 3 to pass with min 3, got %v", err)
	}
	if err := ValidateMinLength("field", "ab", 3); err == nil {
		t.Error("expected length 2 to fail with min 3")
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal string", "hello", "hello"},
		{"With whitespace", "  hello  ", "hello"},
		{"With null byte", "hello\x00world", "helloworld"},
		{"Multiple null bytes", "a\x00b\x00c", "abc"},
		{"Empty string", "", ""},
		{"Only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeString(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeString(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidateLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{"Valid limit", 50, 50},
		{"Zero limit", 0, 20},
		{"Negative limit", -5, 20},
		{"Exceeds max", 150, 100},
		{"Max limit", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateLimit(tt.limit)
			if result != tt.expected {
				t.Errorf("ValidateLimit(%d) = %d, want %d", tt.limit, result, tt.expected)
			}
		})
	}
}

func TestValidateOffset(t *testing.T) {
	if got := ValidateOffset(-1); got != 0 {
		t.Errorf("ValidateOffset(-1) = %d, want 0", got)
	}
	if got := ValidateOffset(40); got != 40 {
		t.Errorf("ValidateOffset(40) = %d, want 40", got)
	}
}

func TestIsAlphanumeric(t *testing.T) {
	if !IsAlphanumeric("abc123XYZ") {
		t.Error("expected abc123XYZ to be alphanumeric")
	}
	if IsAlphanumeric("abc-123") {
		t.Error("expected abc-123 to be rejected")
	}
}
