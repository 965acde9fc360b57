package cmd

import (
	"fmt"
	"os"

	"ucifleet/internal/uciconf"
	"ucifleet/pkg/uci"

	"github.com/spf13/cobra"
)

var (
	scriptCommit bool
	scriptReload bool
	scriptOutput string
)

var scriptCmd = &cobra.Command{
	Use:   "script <layer.yaml> [<layer.yaml>...]",
	Short: "Render the desired configuration as a shell script",
	Long: `Merge the given configuration layers and print a shell script of uci
commands that reproduces the desired state. The script is self-contained
and needs no connection; use it for image provisioning or air-gapped
devices.

Examples:
  ucifleet script base.yaml
  ucifleet script --commit --reload base.yaml attic.yaml
  ucifleet script -o provision.sh base.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(scriptCmd)

	scriptCmd.Flags().BoolVar(&scriptCommit, "commit", false, "Append a uci commit")
	scriptCmd.Flags().BoolVar(&scriptReload, "reload", false, "Append network restart and wifi reload")
	scriptCmd.Flags().StringVarP(&scriptOutput, "output", "o", "", "Write the script to a file instead of stdout")
}

func runScript(cmd *cobra.Command, args []string) error {
	doc, err := uciconf.LoadMerged(".", args)
	if err != nil {
		return err
	}

	commands := doc.Commands()
	for _, c := range commands {
		if err := uci.ValidatePath(c.Path); err != nil {
			return err
		}
	}

	script := uci.Script(commands, uci.ScriptOptions{Commit: scriptCommit, Reload: scriptReload}) + "\n"

	if scriptOutput != "" {
		return os.WriteFile(scriptOutput, []byte(script), 0o755)
	}
	fmt.Fprint(cmd.OutOrStdout(), script)
	return nil
}
