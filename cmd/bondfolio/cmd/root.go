package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bondfolio",
	Short: "A file-backed personal bond portfolio tracker",
	Long: `Bondfolio tracks bond purchases, maturities, and month-by-month
interest receipts in a single SQLite file you own.

It provides:
  - An interactive session over a portfolio file (shell)
  - Dashboard, list, interest-grid, and analytics views
  - Explicit save, decoupled from editing, with a backup-download
    fallback when no file is bound

All data stays on your machine, in one .db file.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
