package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var exportFlags struct {
	format  string
	afterID int64
	limit   int
	gzip    bool
	output  string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download events from the saved target",
	Long: `Download collected events from the saved target in bulk.

Formats: json (array), csv (tabular, no bodies), ndjson (one object
per line). Output goes to stdout unless --output is given.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFlags.format, "format", "json", "export format: json, csv, or ndjson")
	exportCmd.Flags().Int64Var(&exportFlags.afterID, "after-id", 0, "export only events with id greater than this")
	exportCmd.Flags().IntVar(&exportFlags.limit, "limit", 1000, "max events to export (up to 10000)")
	exportCmd.Flags().BoolVar(&exportFlags.gzip, "gzip", false, "request a gzip-compressed download")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "write to file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	st, err := loadTarget()
	if err != nil {
		return err
	}

	u, err := url.Parse(st.LogsURL())
	if err != nil {
		return err
	}
	u.Path = "/" + st.Token + "/export"
	q := u.Query()
	q.Set("format", exportFlags.format)
	q.Set("after_id", strconv.FormatInt(exportFlags.afterID, 10))
	q.Set("limit", strconv.Itoa(exportFlags.limit))
	if exportFlags.gzip {
		q.Set("gzip", "true")
	}
	u.RawQuery = q.Encode()

	httpClient := &http.Client{Timeout: 2 * time.Minute}
	resp, err := httpClient.Get(u.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("export failed with status %d: %s", resp.StatusCode, body)
	}

	out := os.Stdout
	if exportFlags.output != "" {
		f, err := os.Create(exportFlags.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return err
	}
	if exportFlags.output != "" {
		fmt.Fprintf(os.Stderr, "wrote %d bytes to %s\n", n, exportFlags.output)
	}
	return nil
}
