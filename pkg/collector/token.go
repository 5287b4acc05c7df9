package collector

import "strings"

// Authorizer validates the path-embedded capability token against the
// configured token set. Multiple tokens are supported so operators can
// rotate tokens without dropping in-flight engagements.
type Authorizer struct {
	tokens map[string]struct{}
}

// NewAuthorizer builds an Authorizer from the configured token list.
// Blank entries are ignored.
func NewAuthorizer(tokens []string) *Authorizer {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	return &Authorizer{tokens: set}
}

// Authorized reports whether the candidate token is an exact member of the
// configured set. Callers must surface failure as a uniform 404 so a
// prober cannot distinguish a bad token from a nonexistent route.
func (a *Authorizer) Authorized(token string) bool {
	_, ok := a.tokens[token]
	return ok
}

// TokenCount returns the number of configured tokens.
func (a *Authorizer) TokenCount() int {
	return len(a.tokens)
}
