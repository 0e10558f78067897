package main

import (
	"fmt"
	"os"

	"github.com/SeakMengs/DossierFlow/internal/cli"
	"github.com/SeakMengs/DossierFlow/internal/env"
	"github.com/spf13/cobra"
)

func init() {
	env.LoadEnv(".env")
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "dossierctl",
		Short: "Operate a DossierFlow deployment from the command line",
	}

	rootCmd.AddCommand(cli.ExportCmd(cli.Connect))
	rootCmd.AddCommand(cli.ColumnsCmd(cli.Connect))
	rootCmd.AddCommand(cli.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
