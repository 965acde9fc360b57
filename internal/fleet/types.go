package fleet

import (
	"fmt"

	"ucifleet/internal/reconcile"
)

// Defaults are fleet-wide settings a device may override.
type Defaults struct {
	// Timeout is the per-device connection/operation timeout in seconds.
	Timeout int `yaml:"timeout"`
	// Username is the default SSH login.
	Username string `yaml:"username"`
	// CommitDelay is how long each device waits, on its own clock, before
	// committing staged changes.
	CommitDelay int `yaml:"commitDelay"`
}

// Device is one fleet member: where to reach it and which configuration
// layers to merge for it.
type Device struct {
	Target   string   `yaml:"target"`
	Port     int      `yaml:"port,omitempty"`
	Username string   `yaml:"username,omitempty"`
	Password string   `yaml:"password,omitempty"`
	KeyFile  string   `yaml:"keyFile,omitempty"`
	Timeout  int      `yaml:"timeout,omitempty"`
	Configs  []string `yaml:"configs"`
	Tags     []string `yaml:"tags,omitempty"`
}

// EffectiveTimeout applies fleet defaults to the device's timeout.
func (d Device) EffectiveTimeout(defaults Defaults) int {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return defaults.Timeout
}

// EffectiveUsername applies fleet defaults to the device's login.
func (d Device) EffectiveUsername(defaults Defaults) string {
	if d.Username != "" {
		return d.Username
	}
	return defaults.Username
}

// Config is the fleet inventory: defaults plus named devices. It is loaded
// once per invocation and immutable afterward, so it may be shared across
// device tasks without locking.
type Config struct {
	Defaults Defaults          `yaml:"defaults"`
	Devices  map[string]Device `yaml:"devices"`

	// BaseDir is the directory of the inventory file, used to resolve
	// relative config layer paths. Not serialized.
	BaseDir string `yaml:"-"`
}

// DeviceResult is the outcome of one device's part in a fleet run. Exactly
// one result slot exists per targeted device and is written exactly once.
type DeviceResult struct {
	Name        string
	Target      string
	Success     bool
	ChangeCount int
	Err         error
	Diff        *reconcile.Diff
}

// Phase names the stage of the rollout a Result describes.
type Phase string

const (
	PhasePreview Phase = "preview"
	PhaseStage   Phase = "stage"
	PhaseCommit  Phase = "commit"
)

// Result aggregates the per-device outcomes of one fleet operation.
type Result struct {
	RunID      string
	Phase      Phase
	Devices    []DeviceResult
	RolledBack bool
}

// Success reports whether every targeted device succeeded.
func (r *Result) Success() bool {
	for _, d := range r.Devices {
		if !d.Success {
			return false
		}
	}
	return true
}

// FailureCount counts devices that failed.
func (r *Result) FailureCount() int {
	n := 0
	for _, d := range r.Devices {
		if !d.Success {
			n++
		}
	}
	return n
}

// Failures returns the failed device results, in run order.
func (r *Result) Failures() []DeviceResult {
	var out []DeviceResult
	for _, d := range r.Devices {
		if !d.Success {
			out = append(out, d)
		}
	}
	return out
}

// TimeoutError reports a device that did not finish a phase within its
// configured timeout. It fails that device only; other in-flight devices
// keep running.
type TimeoutError struct {
	Device  string
	Seconds int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("device %s timed out after %ds", e.Device, e.Seconds)
}
