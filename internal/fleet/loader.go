package fleet

import (
	"fmt"
	"os"
	"path/filepath"

	"ucifleet/pkg/logging"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the fleet defaults applied before unmarshalling an
// inventory file over them.
func DefaultConfig() Config {
	return Config{
		Defaults: Defaults{
			Timeout:     30,
			Username:    "root",
			CommitDelay: 10,
		},
	}
}

// Load reads a fleet inventory file, applies defaults, and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fleet inventory %s: %w", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing fleet inventory %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	config.BaseDir = filepath.Dir(abs)

	if err := Validate(&config); err != nil {
		return nil, err
	}

	logging.Info("FleetLoader", "Loaded fleet inventory from %s (%d devices)", path, len(config.Devices))
	return &config, nil
}

// Validate checks the structural requirements of an inventory: at least one
// device, and a target plus at least one config layer per device.
func Validate(config *Config) error {
	if len(config.Devices) == 0 {
		return fmt.Errorf("fleet inventory defines no devices")
	}
	for name, device := range config.Devices {
		if device.Target == "" {
			return fmt.Errorf("device %q has no target", name)
		}
		if len(device.Configs) == 0 {
			return fmt.Errorf("device %q has no config layers", name)
		}
	}
	if config.Defaults.CommitDelay < 0 {
		return fmt.Errorf("commit delay must not be negative")
	}
	return nil
}
