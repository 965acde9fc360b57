package cmd

import (
	"errors"
	"os"

	"ucifleet/internal/pathmatch"
	"ucifleet/internal/reconcile"
	"ucifleet/pkg/logging"
	"ucifleet/pkg/uci"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands. These follow common conventions so the tool
// composes with scripts and CI pipelines.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, device
	// unreachable, invalid arguments).
	ExitCodeError = 1
	// ExitCodeDrift indicates `diff --exit-code` found pending changes.
	ExitCodeDrift = 2
	// ExitCodeConfig indicates the desired configuration itself is invalid:
	// malformed paths, scalar/list conflicts, or bad retention patterns.
	ExitCodeConfig = 3
)

var (
	rootLogLevel string
	rootNoColor  bool
)

// rootCmd is the entry point when the application is called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "ucifleet",
	Short: "Declarative UCI configuration for OpenWrt device fleets",
	Long: `ucifleet reconciles declarative UCI configuration against live OpenWrt
devices. It computes the minimal change set between the desired state
(YAML config layers) and a device's current state, and rolls changes out
across whole fleets with all-or-nothing staging and deferred commits.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.InitForCLI(logging.ParseLevel(rootLogLevel), os.Stderr)
	},
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. It is called by
// main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "ucifleet version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var drift *driftError
	if errors.As(err, &drift) {
		return ExitCodeDrift
	}

	var malformed *uci.MalformedPathError
	if errors.As(err, &malformed) {
		return ExitCodeConfig
	}
	var conflict *reconcile.ConflictError
	if errors.As(err, &conflict) {
		return ExitCodeConfig
	}
	var pattern *pathmatch.PatternError
	if errors.As(err, &pattern) {
		return ExitCodeConfig
	}

	// Default to general error
	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&rootNoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newVersionCmd())
}
