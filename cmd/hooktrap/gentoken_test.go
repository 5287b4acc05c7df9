package main

import (
	"encoding/hex"
	"testing"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		wantBytes int
	}{
		{"default length", 32, 32},
		{"short lengths are rounded up", 4, 16},
		{"zero is rounded up", 0, 16},
		{"large length kept", 64, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := generateToken(tt.length)
			if err != nil {
				t.Fatalf("generateToken: %v", err)
			}
			raw, err := hex.DecodeString(token)
			if err != nil {
				t.Fatalf("token %q is not hex: %v", token, err)
			}
			if len(raw) != tt.wantBytes {
				t.Errorf("token is %d bytes, want %d", len(raw), tt.wantBytes)
			}
		})
	}
}

func TestGenerateToken_Unique(t *testing.T) {
	a, err := generateToken(32)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}
	b, err := generateToken(32)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}
	if a == b {
		t.Error("two generated tokens are identical")
	}
}

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain token", "abc123", "abc123"},
		{"whitespace trimmed", "  abc123  ", "abc123"},
		{"placeholder brackets stripped", "<abc123>", "abc123"},
		{"brackets with inner space", "< abc123 >", "abc123"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeToken(tt.in); got != tt.want {
				t.Errorf("normalizeToken(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
