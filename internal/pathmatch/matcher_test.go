package pathmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		path     string
		expected bool
	}{
		{name: "exact match", pattern: "devices.br_lan.ports", path: "devices.br_lan.ports", expected: true},
		{name: "exact mismatch", pattern: "devices.br_lan.ports", path: "devices.br_lan.type", expected: false},
		{name: "single wildcard matches one segment", pattern: "interfaces.*.gateway", path: "interfaces.wan.gateway", expected: true},
		{name: "single wildcard does not cross dots", pattern: "interfaces.*.gateway", path: "interfaces.wan.sub.gateway", expected: false},
		{name: "suffix wildcard", pattern: "interfaces.guest.*", path: "interfaces.guest.proto", expected: true},
		{name: "suffix wildcard wrong section", pattern: "interfaces.guest.*", path: "interfaces.lan.proto", expected: false},
		{name: "double wildcard deep", pattern: "devices.br_lan.**", path: "devices.br_lan.ports.lan1", expected: true},
		{name: "double wildcard zero segments", pattern: "devices.br_lan.**", path: "devices.br_lan", expected: true},
		{name: "double wildcard in middle", pattern: "devices.**.ports", path: "devices.nested.deep.ports", expected: true},
		{name: "double wildcard in middle single level", pattern: "devices.**.ports", path: "devices.br_lan.ports", expected: true},
		{name: "double wildcard in middle mismatch", pattern: "devices.**.ports", path: "devices.br_lan.type", expected: false},
		{name: "bare double wildcard matches everything", pattern: "**", path: "a.b.c.d.e.f", expected: true},
		{name: "in-segment glob", pattern: "devices.br_*.*", path: "devices.br_guest.anything", expected: true},
		{name: "in-segment glob mismatch", pattern: "devices.br_*.*", path: "devices.vlan_guest.ports", expected: false},
		{name: "pattern longer than path", pattern: "a.b.c", path: "a.b", expected: false},
		{name: "path longer than pattern", pattern: "a.b", path: "a.b.c", expected: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Matches(tc.pattern, tc.path))
		})
	}
}

func TestValidatePattern(t *testing.T) {
	assert.NoError(t, ValidatePattern("devices.br_lan.ports"))
	assert.NoError(t, ValidatePattern("interfaces.*.gateway"))
	assert.NoError(t, ValidatePattern("**"))

	assert.Error(t, ValidatePattern(""))
	assert.Error(t, ValidatePattern("devices..ports"))
	assert.Error(t, ValidatePattern("devices.br_lan."))
	assert.Error(t, ValidatePattern(".devices"))
	assert.Error(t, ValidatePattern("devices.[a-.ports"))
}

func TestPolicyRetains(t *testing.T) {
	policy, err := NewPolicy([]string{
		"devices.br_lan.ports",
		"interfaces.*.gateway",
		"hosts.guest_*.*",
	})
	require.NoError(t, err)

	assert.True(t, policy.Retains("devices.br_lan.ports"))
	assert.False(t, policy.Retains("devices.br_lan.type"))

	assert.True(t, policy.Retains("interfaces.lan.gateway"))
	assert.True(t, policy.Retains("interfaces.wan.gateway"))
	assert.False(t, policy.Retains("interfaces.lan.proto"))

	assert.True(t, policy.Retains("hosts.guest_phone.mac"))
	assert.False(t, policy.Retains("hosts.main_server.mac"))
}

func TestPolicyMatchSectionDef(t *testing.T) {
	policy, err := NewPolicy([]string{
		"interfaces.guest.*",
		"interfaces.*.gateway",
	})
	require.NoError(t, err)

	// Wildcard over the final segment retains the section definition too.
	retained, withSection := policy.Match("interfaces.guest.proto")
	assert.True(t, retained)
	assert.True(t, withSection)

	// A literal final segment retains only the option itself.
	retained, withSection = policy.Match("interfaces.lan.gateway")
	assert.True(t, retained)
	assert.False(t, withSection)

	retained, _ = policy.Match("interfaces.lan.proto")
	assert.False(t, retained)
}

func TestEmptyPolicyRetainsNothing(t *testing.T) {
	policy := EmptyPolicy()
	assert.False(t, policy.Retains("anything.at.all"))
	assert.False(t, policy.Retains("devices.br_lan.ports"))
}

func TestNewPolicyRejectsMalformed(t *testing.T) {
	_, err := NewPolicy([]string{"devices.*.lan", "broken."})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.")
}
