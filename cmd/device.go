package cmd

import (
	"ucifleet/internal/fleet"

	"github.com/spf13/cobra"
)

// deviceFlags are the connection options shared by the single-device
// commands (diff, apply).
type deviceFlags struct {
	host     string
	port     int
	user     string
	password string
	keyFile  string
	timeout  int
}

func (f *deviceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.host, "host", "", "Device address (required)")
	cmd.Flags().IntVar(&f.port, "port", 22, "SSH port")
	cmd.Flags().StringVar(&f.user, "user", "root", "SSH username")
	cmd.Flags().StringVar(&f.password, "password", "", "SSH password")
	cmd.Flags().StringVar(&f.keyFile, "key-file", "", "SSH private key file")
	cmd.Flags().IntVar(&f.timeout, "timeout", 30, "Per-device timeout in seconds")
	cmd.MarkFlagRequired("host")
}

// fleetOfOne wraps a single ad-hoc device in a fleet config so the
// single-device commands run through the same executor as fleet rollouts.
func (f *deviceFlags) fleetOfOne(layers []string) *fleet.Config {
	defaults := fleet.DefaultConfig().Defaults
	return &fleet.Config{
		Defaults: defaults,
		Devices: map[string]fleet.Device{
			f.host: {
				Target:   f.host,
				Port:     f.port,
				Username: f.user,
				Password: f.password,
				KeyFile:  f.keyFile,
				Timeout:  f.timeout,
				Configs:  layers,
			},
		},
		BaseDir: ".",
	}
}
