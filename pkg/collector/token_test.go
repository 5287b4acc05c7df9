package collector

import "testing"

func TestAuthorizer_ExactMatch(t *testing.T) {
	auth := NewAuthorizer([]string{"abc123"})

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"exact match", "abc123", true},
		{"wrong token", "wrong", false},
		{"empty token", "", false},
		{"case sensitive", "ABC123", false},
		{"prefix is not enough", "abc", false},
		{"suffix padding rejected", "abc123x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := auth.Authorized(tt.token); got != tt.want {
				t.Errorf("Authorized(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestAuthorizer_MultipleTokens(t *testing.T) {
	auth := NewAuthorizer([]string{"tok-one", "tok-two"})

	if !auth.Authorized("tok-one") {
		t.Error("first token should be authorized")
	}
	if !auth.Authorized("tok-two") {
		t.Error("second token should be authorized")
	}
	if auth.Authorized("tok-three") {
		t.Error("unconfigured token should be rejected")
	}
	if auth.TokenCount() != 2 {
		t.Errorf("TokenCount() = %d, want 2", auth.TokenCount())
	}
}

func TestAuthorizer_BlankEntriesIgnored(t *testing.T) {
	auth := NewAuthorizer([]string{"  tok  ", "", "   "})

	if auth.TokenCount() != 1 {
		t.Fatalf("TokenCount() = %d, want 1", auth.TokenCount())
	}
	if !auth.Authorized("tok") {
		t.Error("trimmed token should be authorized")
	}
	if auth.Authorized("") {
		t.Error("empty token must never be authorized")
	}
}
