package fleet

import (
	"path"
	"sort"
)

// Selector picks the devices a fleet operation targets. Zero value selects
// every device.
type Selector struct {
	// Target is a device name or shell glob over names (e.g. "ap-*").
	Target string
	// Tags must all be present on the device (AND logic).
	Tags []string
}

// Matches reports whether the selector picks the named device.
func (s Selector) Matches(name string, device Device) bool {
	if s.Target != "" {
		ok, err := path.Match(s.Target, name)
		if err != nil || !ok {
			return false
		}
	}
	for _, want := range s.Tags {
		if !hasTag(device, want) {
			return false
		}
	}
	return true
}

func hasTag(device Device, tag string) bool {
	for _, t := range device.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Select returns the names of the matching devices in sorted order, so fleet
// runs process and report devices deterministically.
func Select(config *Config, selector Selector) []string {
	var names []string
	for name, device := range config.Devices {
		if selector.Matches(name, device) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
