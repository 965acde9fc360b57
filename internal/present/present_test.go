package present

import (
	"strings"
	"testing"

	"ucifleet/internal/reconcile"
	"ucifleet/pkg/uci"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
)

func sampleDiff() *reconcile.Diff {
	return &reconcile.Diff{
		Add: []uci.Command{
			uci.Set("network.lan.netmask", "255.255.255.0"),
			uci.AddList("network.br_lan.ports", "lan4"),
		},
		Modify: []reconcile.Modification{
			{Path: "network.lan.proto", OldValue: "dhcp", NewValue: "static"},
		},
		RemoteOnly: []uci.Command{
			uci.Set("wireless.guest_iface", "wifi-iface"),
		},
		Whitelisted: []uci.Command{
			uci.Set("network.wan.gateway", "10.0.0.1"),
		},
		Common: []uci.Command{
			uci.Set("network.lan", "interface"),
		},
	}
}

func TestRenderEmptyDiff(t *testing.T) {
	out := Render(&reconcile.Diff{}, ModeFlat, false)
	assert.Equal(t, "No differences found.", out)

	out = Render(&reconcile.Diff{}, ModeTree, true)
	assert.Equal(t, "No differences found.", out)
}

func TestRenderFlat(t *testing.T) {
	out := Render(sampleDiff(), ModeFlat, false)

	assert.Contains(t, out, "Commands to add:")
	assert.Contains(t, out, "+ uci set network.lan.netmask='255.255.255.0'")
	assert.Contains(t, out, "+ uci add_list network.br_lan.ports='lan4'")

	assert.Contains(t, out, "Commands to modify:")
	assert.Contains(t, out, "- uci set network.lan.proto='dhcp'")
	assert.Contains(t, out, "+ uci set network.lan.proto='static'")

	assert.Contains(t, out, "Remote-only settings (not managed):")
	assert.Contains(t, out, "* uci set wireless.guest_iface='wifi-iface'")

	assert.Contains(t, out, "Preserved by retention policy:")
	assert.Contains(t, out, "uci set network.wan.gateway='10.0.0.1'")

	assert.Contains(t, out, "Summary: +2 to add, ~1 to modify, *1 remote-only, 1 preserved, 1 in common")
}

func TestRenderTree(t *testing.T) {
	out := Render(sampleDiff(), ModeTree, false)

	// Packages sorted, sections nested beneath them.
	netIdx := strings.Index(out, "network/")
	wifiIdx := strings.Index(out, "wireless/")
	assert.Greater(t, netIdx, -1)
	assert.Greater(t, wifiIdx, -1)
	assert.Less(t, netIdx, wifiIdx)

	assert.Contains(t, out, "├── br_lan")
	assert.Contains(t, out, "├── lan")
	assert.Contains(t, out, "+ netmask = 255.255.255.0")
	assert.Contains(t, out, "~ proto")
	assert.Contains(t, out, "* guest_iface = wifi-iface (remote-only)")
	assert.Contains(t, out, "gateway = 10.0.0.1 (preserved)")
	assert.Contains(t, out, "└── wan")
	assert.Contains(t, out, "Summary:")
}

func TestRenderColorUsesANSI(t *testing.T) {
	text.EnableColors()
	defer text.DisableColors()

	out := Render(sampleDiff(), ModeFlat, true)
	assert.Contains(t, out, "\x1b[")
}
