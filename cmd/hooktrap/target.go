package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hooktrap-hq/hooktrap/pkg/target"
)

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Manage the saved collector target",
}

var targetSetFlags struct {
	url   string
	token string
}

var targetSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save a collector target",
	RunE: func(cmd *cobra.Command, args []string) error {
		base := strings.TrimRight(strings.TrimSpace(targetSetFlags.url), "/")
		token := normalizeToken(targetSetFlags.token)

		if base == "" {
			return fmt.Errorf("url is empty")
		}
		if token == "" {
			return fmt.Errorf("token is empty; paste the token or run \"hooktrap init\"")
		}
		warnIfNonHex(token)

		statePath, err := target.DefaultPath()
		if err != nil {
			return err
		}
		st := &target.State{
			BaseURL:  base,
			Token:    token,
			Provider: "manual",
		}
		if err := target.Save(st, statePath); err != nil {
			return err
		}

		fmt.Println("saved")
		printEndpoints(st)
		return nil
	},
}

var targetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved collector target",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadTarget()
		if err != nil {
			return err
		}
		fmt.Printf("provider:  %s\n", st.Provider)
		fmt.Printf("base_url:  %s\n", st.BaseURL)
		fmt.Printf("token:     %s\n", st.Token)
		printEndpoints(st)
		return nil
	},
}

var targetClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the saved collector target",
	RunE: func(cmd *cobra.Command, args []string) error {
		statePath, err := target.DefaultPath()
		if err != nil {
			return err
		}
		if err := target.Clear(statePath); err != nil {
			return err
		}
		fmt.Println("cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(targetCmd)
	targetCmd.AddCommand(targetSetCmd, targetShowCmd, targetClearCmd)

	targetSetCmd.Flags().StringVar(&targetSetFlags.url, "url", "", "base URL, e.g. https://example.com or http://127.0.0.1:8080")
	targetSetCmd.Flags().StringVar(&targetSetFlags.token, "token", "", "collector token used in the URL path")
	targetSetCmd.MarkFlagRequired("url")
	targetSetCmd.MarkFlagRequired("token")
}
