// Command gallery browses and edits the prompt and workflow catalog from a
// terminal. It talks to a gallery server when one is configured and keeps a
// local copy otherwise.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagRemote  string
	flagDataDir string
	flagUser    string
	flagUserID  string
	flagPolicy  string
	flagJSON    bool
	noColor     bool
)

var rootCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Prompt and workflow catalog",
	Long: `gallery manages a catalog of reusable prompts and automation workflows.

With a remote configured (--remote or GALLERY_CLIENT_REMOTE) every command
reads and writes the server first and falls back to the local store when the
server is unreachable or runs without server storage.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagRemote, "remote", "", "server API base URL, e.g. http://localhost:8080/api")
	pf.StringVar(&flagDataDir, "data-dir", "", "local store directory")
	pf.StringVar(&flagUser, "user", "", "username that owns local favorites")
	pf.StringVar(&flagUserID, "user-id", "", "server account id that owns remote favorites")
	pf.StringVar(&flagPolicy, "merge-policy", "", "counter reconciliation: max or remote")
	pf.BoolVar(&flagJSON, "json", false, "print JSON instead of tables")
	pf.BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored output")

	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(workflowsCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
