package cmd

import (
	"fmt"

	"ucifleet/internal/fleet"
	"ucifleet/internal/present"

	"github.com/spf13/cobra"
)

var (
	diffDevice   deviceFlags
	diffTree     bool
	diffExitCode bool
)

// driftError signals that a diff found pending changes. It only carries an
// exit-code meaning; the diff itself has already been printed.
type driftError struct {
	changes int
}

func (e *driftError) Error() string {
	return fmt.Sprintf("%d pending change(s)", e.changes)
}

var diffCmd = &cobra.Command{
	Use:   "diff <layer.yaml> [<layer.yaml>...]",
	Short: "Show the pending changes between desired and live configuration",
	Long: `Merge the given configuration layers into a desired state, fetch the
device's live UCI configuration, and print the classified change set.
Nothing is written to the device.

Examples:
  ucifleet diff --host 192.168.1.1 base.yaml
  ucifleet diff --host 192.168.1.1 --key-file ~/.ssh/id_ed25519 base.yaml attic.yaml
  ucifleet diff --host 192.168.1.1 --tree --exit-code base.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffDevice.register(diffCmd)
	diffCmd.Flags().BoolVar(&diffTree, "tree", false, "Group the diff by package and section")
	diffCmd.Flags().BoolVar(&diffExitCode, "exit-code", false, "Exit with code 2 when changes are pending")
}

func runDiff(cmd *cobra.Command, args []string) error {
	executor := fleet.NewExecutor(diffDevice.fleetOfOne(args))

	result, err := executor.Run(cmd.Context(), fleet.Options{DryRun: true})
	if err != nil {
		return err
	}

	device := result.Devices[0]
	if !device.Success {
		return device.Err
	}

	mode := present.ModeFlat
	if diffTree {
		mode = present.ModeTree
	}
	fmt.Fprint(cmd.OutOrStdout(), present.Render(device.Diff, mode, !rootNoColor))

	if diffExitCode && device.ChangeCount > 0 {
		return &driftError{changes: device.ChangeCount}
	}
	return nil
}
