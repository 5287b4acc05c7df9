package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Purge old events from the saved target",
	Long: `Delete events older than the given number of days from the
saved target. The deletion is irreversible; the server clamps days to
the range 1 through 365.`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 7, "delete events older than this many days")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	st, err := loadTarget()
	if err != nil {
		return err
	}

	u, err := url.Parse(st.LogsURL())
	if err != nil {
		return err
	}
	u.Path = "/" + st.Token + "/cleanup"
	q := u.Query()
	q.Set("days", strconv.Itoa(cleanupDays))
	u.RawQuery = q.Encode()

	req, err := http.NewRequest(http.MethodDelete, u.String(), nil)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cleanup failed with status %d: %s", resp.StatusCode, body)
	}

	var result struct {
		OK           bool  `json:"ok"`
		DeletedCount int64 `json:"deleted_count"`
		Days         int   `json:"days"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("unexpected cleanup response: %w", err)
	}

	fmt.Printf("deleted %d events older than %d days\n", result.DeletedCount, result.Days)
	return nil
}
