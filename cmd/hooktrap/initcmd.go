package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hooktrap-hq/hooktrap/pkg/target"
)

var initFlags struct {
	url    string
	length int
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a token and save a local target",
	Long: `Generate a fresh capture token and save a local target state
pointing at the given base URL. Pair with "hooktrap serve --token" to
start collecting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := generateToken(initFlags.length)
		if err != nil {
			return err
		}

		base := strings.TrimRight(initFlags.url, "/")
		statePath, err := target.DefaultPath()
		if err != nil {
			return err
		}

		st := &target.State{
			BaseURL:  base,
			Token:    token,
			Provider: "local",
		}
		if err := target.Save(st, statePath); err != nil {
			return err
		}

		fmt.Println("initialized")
		fmt.Printf("state:    %s\n", statePath)
		fmt.Printf("base_url: %s\n", base)
		fmt.Printf("token:    %s\n", token)
		fmt.Println()
		printEndpoints(st)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initFlags.url, "url", "http://127.0.0.1:8080", "base URL to save as target")
	initCmd.Flags().IntVar(&initFlags.length, "length", 32, "token length in bytes (encoded as hex)")
}

func printEndpoints(st *target.State) {
	fmt.Printf("collector: %s\n", st.CollectorURL())
	fmt.Printf("logs:      %s\n", st.LogsURL())
	fmt.Printf("events:    %s\n", st.EventsURL())
}

// loadTarget loads the saved target state or fails with a hint.
func loadTarget() (*target.State, error) {
	statePath, err := target.DefaultPath()
	if err != nil {
		return nil, err
	}
	st, err := target.Load(statePath)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("no target set; run \"hooktrap init\" or \"hooktrap target set\"")
	}
	return st, nil
}
