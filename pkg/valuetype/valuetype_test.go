package valuetype

import (
	"strings"
	"testing"
)

func TestDetect_Binary(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{
			name:   "null byte",
			input:  "binary\x00data",
			reason: "null",
		},
		{
			name:   "many non-printable characters",
			input:  "\x01\x02\x03\x04\x05\x06\x07\x08",
			reason: "non-printable",
		},
		{
			name:   "mixed binary and text (over 30% non-printable)",
			input:  "text\x01\x02\x03\x04\x05",
			reason: "non-printable",
		},
		{
			name:   "invalid utf-8",
			input:  "caf\xe9",
			reason: "UTF-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valueType, reason := DetectWithReason([]byte(tt.input))
			if valueType != TypeBinary {
				t.Errorf("Expected TypeBinary, got %s", valueType)
			}
			if !strings.Contains(reason, tt.reason) {
				t.Errorf("Expected reason to mention %q, got: %s", tt.reason, reason)
			}
			if !IsBinary([]byte(tt.input)) {
				t.Error("Expected IsBinary to be true")
			}
		})
	}
}

func TestDetect_Text(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "plain ascii", input: "hello world"},
		{name: "multi-line", input: "line 1\nline 2\r\n\tindented"},
		{name: "unicode", input: "grüße 世界"},
		{name: "ansi colors", input: "\x1b[31mred\x1b[0m"},
		{name: "few control characters", input: "mostly text\x01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect([]byte(tt.input)); got != TypeText {
				t.Errorf("Expected TypeText, got %s", got)
			}
		})
	}
}

func TestDetect_Empty(t *testing.T) {
	if got := Detect(nil); got != TypeEmpty {
		t.Errorf("Expected TypeEmpty, got %s", got)
	}
	if got := Detect([]byte{}); got != TypeEmpty {
		t.Errorf("Expected TypeEmpty, got %s", got)
	}
	if IsBinary(nil) {
		t.Error("Empty value should not be binary")
	}
}
