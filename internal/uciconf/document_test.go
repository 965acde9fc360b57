package uciconf

import (
	"os"
	"path/filepath"
	"testing"

	"ucifleet/pkg/uci"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const baseLayer = `
retain:
  - interfaces.*.gateway
packages:
  network:
    lan:
      type: interface
      options:
        proto: static
        ipaddr: 192.168.1.1
    br_lan:
      type: device
      options:
        name: br-lan
      lists:
        ports: [lan1, lan2]
`

const overlayLayer = `
retain:
  - devices.br_lan.**
packages:
  network:
    lan:
      options:
        ipaddr: 192.168.2.1
    br_lan:
      lists:
        ports: [lan1, lan2, lan3]
  wireless:
    radio0:
      type: wifi-device
      options:
        channel: 36
        disabled: false
`

func decode(t *testing.T, src string) *Document {
	t.Helper()
	var doc Document
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	return &doc
}

func TestDocumentCommands(t *testing.T) {
	doc := decode(t, baseLayer)
	commands := doc.Commands()

	// Sections sorted, each section-definition before its options.
	require.Len(t, commands, 7)
	assert.Equal(t, uci.Set("network.br_lan", "device"), commands[0])
	assert.Equal(t, uci.Set("network.br_lan.name", "br-lan"), commands[1])
	assert.Equal(t, uci.AddList("network.br_lan.ports", "lan1"), commands[2])
	assert.Equal(t, uci.AddList("network.br_lan.ports", "lan2"), commands[3])
	assert.Equal(t, uci.Set("network.lan", "interface"), commands[4])
	assert.Equal(t, uci.Set("network.lan.ipaddr", "192.168.1.1"), commands[5])
	assert.Equal(t, uci.Set("network.lan.proto", "static"), commands[6])
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "1", FormatValue(true))
	assert.Equal(t, "0", FormatValue(false))
	assert.Equal(t, "36", FormatValue(36))
	assert.Equal(t, "HE80", FormatValue("HE80"))
}

func TestMergeOverridesPerPath(t *testing.T) {
	merged := Merge(decode(t, baseLayer), decode(t, overlayLayer))

	lan := merged.Packages["network"]["lan"]
	assert.Equal(t, "interface", lan.Type)
	assert.Equal(t, "192.168.2.1", lan.Options["ipaddr"])
	assert.Equal(t, "static", lan.Options["proto"])

	// Lists replace wholesale.
	assert.Equal(t, []string{"lan1", "lan2", "lan3"}, merged.Packages["network"]["br_lan"].Lists["ports"])

	// Sections only present in the overlay are added.
	radio := merged.Packages["wireless"]["radio0"]
	assert.Equal(t, "wifi-device", radio.Type)

	// Retention patterns are the union of both layers.
	assert.ElementsMatch(t, []string{"interfaces.*.gateway", "devices.br_lan.**"}, merged.Retain)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := decode(t, baseLayer)
	overlay := decode(t, overlayLayer)
	_ = Merge(base, overlay)

	assert.Equal(t, "192.168.1.1", base.Packages["network"]["lan"].Options["ipaddr"])
	assert.Equal(t, []string{"lan1", "lan2"}, base.Packages["network"]["br_lan"].Lists["ports"])
}

func TestDocumentPolicy(t *testing.T) {
	doc := decode(t, baseLayer)
	policy, err := doc.Policy()
	require.NoError(t, err)

	assert.True(t, policy.Retains("interfaces.wan.gateway"))
	assert.False(t, policy.Retains("interfaces.wan.proto"))
}

func TestDocumentPolicyRejectsBadPattern(t *testing.T) {
	doc := &Document{Retain: []string{"broken."}}
	_, err := doc.Policy()
	assert.Error(t, err)
}

func TestLoadMerged(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(baseLayer), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.yaml"), []byte(overlayLayer), 0o644))

	merged, err := LoadMerged(dir, []string{"base.yaml", "site.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "192.168.2.1", merged.Packages["network"]["lan"].Options["ipaddr"])

	_, err = LoadMerged(dir, []string{"missing.yaml"})
	assert.Error(t, err)
}

func TestAddSectionHelpers(t *testing.T) {
	doc := &Document{}
	doc.AddSection("network", "wan", Section{Type: "interface"})
	doc.SetOption("network", "wan", "proto", "dhcp")
	doc.AppendList("network", "wan", "dns", "1.1.1.1")

	commands := doc.Commands()
	require.Len(t, commands, 3)
	assert.Equal(t, uci.Set("network.wan", "interface"), commands[0])
	assert.Equal(t, uci.Set("network.wan.proto", "dhcp"), commands[1])
	assert.Equal(t, uci.AddList("network.wan.dns", "1.1.1.1"), commands[2])
}
