package collector

import (
	"strings"
	"testing"
)

func TestReadBody(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		maxBytes      int64
		want          string
		wantTruncated bool
	}{
		{"under the limit", "hello", 10, "hello", false},
		{"exactly the limit", "hello", 5, "hello", false},
		{"over the limit", "hello world", 5, "hello", true},
		{"empty body", "", 10, "", false},
		{"zero limit", "hello", 0, "", true},
		{"negative limit treated as zero", "hello", -1, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated, err := ReadBody(strings.NewReader(tt.input), tt.maxBytes)
			if err != nil {
				t.Fatalf("ReadBody: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("body = %q, want %q", got, tt.want)
			}
			if truncated != tt.wantTruncated {
				t.Errorf("truncated = %v, want %v", truncated, tt.wantTruncated)
			}
		})
	}
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		wantText string
		wantB64  string
	}{
		{"valid utf-8", []byte("hello"), "hello", ""},
		{"multibyte utf-8", []byte("héllо"), "héllо", ""},
		{"binary", []byte{0xff, 0xfe, 0x00, 0x01}, "", "//4AAQ=="},
		{"empty", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, b64 := DecodeBody(tt.input)
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
			if b64 != tt.wantB64 {
				t.Errorf("base64 = %q, want %q", b64, tt.wantB64)
			}
			if text != "" && b64 != "" {
				t.Error("text and base64 forms must be mutually exclusive")
			}
		})
	}
}
