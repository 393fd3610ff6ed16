// cmd/tools/fund-catalog/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "fund-catalog",
		Short:        "Inspect, validate and import the lead qualifier fund catalog",
		Version:      Version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringP("seed", "s", "configs/fundos_criterios.json", "Path to the catalog seed file")

	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(evaluateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
