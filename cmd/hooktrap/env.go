package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var envPrintToken bool

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print shell exports for the saved target",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadTarget()
		if err != nil {
			return err
		}

		if envPrintToken {
			fmt.Println(st.Token)
			return nil
		}

		fmt.Printf("export HOOKTRAP_URL='%s'\n", st.BaseURL)
		fmt.Printf("export TOKEN='%s'\n", st.Token)
		fmt.Printf("# collector: %s\n", st.CollectorURL())
		fmt.Printf("# logs:      %s\n", st.LogsURL())
		fmt.Printf("# events:    %s\n", st.EventsURL())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolVar(&envPrintToken, "print-token", false, "print only the token (for scripting)")
}
