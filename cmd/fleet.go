package cmd

import (
	"fmt"
	"time"

	"ucifleet/internal/fleet"
	"ucifleet/internal/present"
	ufstrings "ucifleet/pkg/strings"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	fleetInventory       string
	fleetTarget          string
	fleetTags            []string
	fleetCommitDelay     int
	fleetRemoveUnmanaged bool
	fleetShowDiff        bool
	fleetQuiet           bool
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Coordinated rollouts across a fleet of devices",
	Long: `Roll out configuration to every device in a fleet inventory with
two-phase semantics: changes are staged on all devices in parallel, and
only if every device staged cleanly does each device receive a deferred
commit. Any staging failure rolls back the pending changes everywhere.

Examples:
  ucifleet fleet preview -f fleet.yaml
  ucifleet fleet apply -f fleet.yaml
  ucifleet fleet apply -f fleet.yaml --target "ap-*" --tag mesh
  ucifleet fleet apply -f fleet.yaml --commit-delay 60`,
}

func init() {
	rootCmd.AddCommand(fleetCmd)

	fleetCmd.PersistentFlags().StringVarP(&fleetInventory, "inventory", "f", "fleet.yaml", "Fleet inventory file")
	fleetCmd.PersistentFlags().StringVar(&fleetTarget, "target", "", "Select devices by name glob")
	fleetCmd.PersistentFlags().StringSliceVar(&fleetTags, "tag", nil, "Select devices carrying all given tags (repeatable)")
	fleetCmd.PersistentFlags().BoolVar(&fleetShowDiff, "diff", false, "Print each device's change set")
	fleetCmd.PersistentFlags().BoolVarP(&fleetQuiet, "quiet", "q", false, "Suppress progress output")

	fleetPreviewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Reconcile every selected device without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFleet(cmd, true)
		},
	}

	fleetApplyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Stage changes on every selected device, then commit or roll back",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFleet(cmd, false)
		},
	}
	fleetApplyCmd.Flags().IntVar(&fleetCommitDelay, "commit-delay", 0, "Seconds each device waits before committing (0 uses the inventory default)")
	fleetApplyCmd.Flags().BoolVar(&fleetRemoveUnmanaged, "remove-unmanaged", false, "Also delete entries absent from the desired state")

	fleetCmd.AddCommand(fleetPreviewCmd)
	fleetCmd.AddCommand(fleetApplyCmd)
}

func runFleet(cmd *cobra.Command, dryRun bool) error {
	config, err := fleet.Load(fleetInventory)
	if err != nil {
		return err
	}
	executor := fleet.NewExecutor(config)

	var s *spinner.Spinner
	if !fleetQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		if dryRun {
			s.Suffix = " Previewing devices..."
		} else {
			s.Suffix = " Staging devices..."
		}
		s.Start()
	}

	result, err := executor.Run(cmd.Context(), fleet.Options{
		Selector:        fleet.Selector{Target: fleetTarget, Tags: fleetTags},
		CommitDelay:     fleetCommitDelay,
		RemoveUnmanaged: fleetRemoveUnmanaged,
		DryRun:          dryRun,
	})

	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	renderFleetResult(cmd, result)

	if !result.Success() {
		return fmt.Errorf("run %s failed on %d device(s)", result.RunID, result.FailureCount())
	}
	return nil
}

// renderFleetResult prints the per-device outcome table and, on request,
// each device's change set.
func renderFleetResult(cmd *cobra.Command, result *fleet.Result) {
	out := cmd.OutOrStdout()

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"DEVICE", "TARGET", "STATUS", "CHANGES", "DETAIL"})
	for _, d := range result.Devices {
		status := text.FgGreen.Sprint("ok")
		detail := ""
		if !d.Success {
			status = text.FgRed.Sprint("failed")
			if d.Err != nil {
				detail = ufstrings.TruncateOneLine(d.Err.Error(), ufstrings.DefaultDetailMaxLen)
			}
		}
		t.AppendRow(table.Row{d.Name, d.Target, status, d.ChangeCount, detail})
	}
	t.Render()

	fmt.Fprintf(out, "run %s  phase=%s", result.RunID, result.Phase)
	if result.RolledBack {
		fmt.Fprint(out, "  ", text.FgYellow.Sprint("rolled back"))
	}
	fmt.Fprintln(out)

	if fleetShowDiff {
		for _, d := range result.Devices {
			if d.Diff == nil {
				continue
			}
			fmt.Fprintf(out, "\n%s (%s):\n", d.Name, d.Target)
			fmt.Fprint(out, present.Render(d.Diff, present.ModeTree, !rootNoColor))
		}
	}
}
