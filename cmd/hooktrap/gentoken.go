package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

var genTokenLength int

var genTokenCmd = &cobra.Command{
	Use:   "gen-token",
	Short: "Generate a random capture token",
	Long: `Generate a cryptographically random capture token, hex encoded.

The length flag is in bytes; tokens shorter than 16 bytes are rounded
up so a guessable token cannot be produced by accident.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := generateToken(genTokenLength)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(genTokenCmd)
	genTokenCmd.Flags().IntVar(&genTokenLength, "length", 32, "token length in bytes (encoded as hex)")
}

// generateToken returns a hex token of at least 16 random bytes.
func generateToken(length int) (string, error) {
	if length < 16 {
		length = 16
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

var hexTokenRe = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)

// normalizeToken trims a pasted token and strips placeholder brackets.
func normalizeToken(token string) string {
	t := strings.TrimSpace(token)
	if t == "" {
		return ""
	}
	if strings.HasPrefix(t, "<") && strings.HasSuffix(t, ">") && len(t) > 2 {
		fmt.Fprintln(os.Stderr, "warning: token looked like a placeholder with <...>, stripping brackets")
		t = strings.TrimSpace(t[1 : len(t)-1])
	}
	if strings.ContainsAny(t, "<>") {
		fmt.Fprintln(os.Stderr, "warning: token contains '<' or '>' characters, did you paste a placeholder?")
	}
	return t
}

// warnIfNonHex nudges on tokens that do not look generated.
func warnIfNonHex(token string) {
	if token != "" && !hexTokenRe.MatchString(token) {
		fmt.Fprintln(os.Stderr, "note: token is not hex; that's OK if intentional, but double-check it")
	}
}
