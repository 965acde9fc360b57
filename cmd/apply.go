package cmd

import (
	"fmt"

	"ucifleet/internal/fleet"
	"ucifleet/internal/present"

	"github.com/spf13/cobra"
)

var (
	applyDevice          deviceFlags
	applyCommitDelay     int
	applyRemoveUnmanaged bool
	applyDryRun          bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <layer.yaml> [<layer.yaml>...]",
	Short: "Reconcile one device and commit the pending changes",
	Long: `Merge the given configuration layers, reconcile against the device's
live state, stage the resulting changes as pending writes, and dispatch a
deferred commit. The device commits on its own clock after the delay, so
the session survives even when the change cuts the management connection.

A staging failure reverts all pending changes on the device.

Examples:
  ucifleet apply --host 192.168.1.1 base.yaml
  ucifleet apply --host 192.168.1.1 --commit-delay 30 base.yaml attic.yaml
  ucifleet apply --host 192.168.1.1 --dry-run base.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyDevice.register(applyCmd)
	applyCmd.Flags().IntVar(&applyCommitDelay, "commit-delay", 0, "Seconds the device waits before committing (0 uses the default)")
	applyCmd.Flags().BoolVar(&applyRemoveUnmanaged, "remove-unmanaged", false, "Also delete entries present on the device but absent from the desired state")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Reconcile and show the diff without writing anything")
}

func runApply(cmd *cobra.Command, args []string) error {
	executor := fleet.NewExecutor(applyDevice.fleetOfOne(args))

	result, err := executor.Run(cmd.Context(), fleet.Options{
		CommitDelay:     applyCommitDelay,
		RemoveUnmanaged: applyRemoveUnmanaged,
		DryRun:          applyDryRun,
	})
	if err != nil {
		return err
	}

	device := result.Devices[0]
	if !device.Success {
		return device.Err
	}

	out := cmd.OutOrStdout()
	if device.Diff != nil {
		fmt.Fprint(out, present.Render(device.Diff, present.ModeFlat, !rootNoColor))
	}

	switch {
	case applyDryRun:
		fmt.Fprintf(out, "\nDry run: %d change(s) would be applied to %s.\n", device.ChangeCount, device.Target)
	case device.ChangeCount == 0:
		fmt.Fprintf(out, "\n%s is already converged.\n", device.Target)
	default:
		fmt.Fprintf(out, "\nStaged %d change(s) on %s; commit dispatched.\n", device.ChangeCount, device.Target)
	}
	return nil
}
