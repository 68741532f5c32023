package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sjkwon/bondfolio/app"
	"github.com/sjkwon/bondfolio/config"
	"github.com/sjkwon/bondfolio/persist"
)

var shellCmd = &cobra.Command{
	Use:     "shell",
	Aliases: []string{"run"},
	Short:   "Start an interactive portfolio session",
	Long: `Start an interactive session over a portfolio file.

The session keeps your edits in memory; nothing touches the file until an
explicit save (or autosave, if enabled in the config). Type 'help' inside
the session for the command list.

Examples:
  bondfolio shell
  bondfolio shell --config bondfolio.yaml`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

var (
	shellConfigPath string
	shellAutoSave   bool
)

func init() {
	rootCmd.AddCommand(shellCmd)

	shellCmd.Flags().StringVarP(&shellConfigPath, "config", "c", "", "path to config file")
	shellCmd.Flags().BoolVar(&shellAutoSave, "autosave", false, "save after every edit (requires a bound file)")
}

func runShell(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if shellConfigPath != "" {
		loaded, err := config.LoadFromFile(shellConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("autosave") {
		cfg.Save.AutoSave = shellAutoSave
	}

	in := bufio.NewScanner(os.Stdin)
	picker := &termPicker{in: in, out: os.Stdout}
	ctrl := persist.NewController(picker, cfg.File.DefaultName, cfg.File.DownloadDir)
	a := app.New(ctrl, cfg.Save.AutoSave)
	defer a.Close()

	s := newSession(a, in, os.Stdout)
	return s.run()
}
