package uci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleShow = `
config interface 'loopback'
	option device 'lo'
	option proto 'static'
	list ipaddr '127.0.0.1/8'

config device 'br_lan'
	option type 'bridge'
	list ports 'lan1'
	list ports 'lan2'
`

const sampleExport = `
network.loopback=interface
network.loopback.device='lo'
network.loopback.proto='static'
network.br_lan=device
network.br_lan.type='bridge'
`

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatShow, DetectFormat(sampleShow))
	assert.Equal(t, FormatExport, DetectFormat(sampleExport))
}

func TestParseShow(t *testing.T) {
	commands := ParseShow("network", sampleShow)
	require.Len(t, commands, 8)

	assert.Equal(t, Set("network.loopback", "interface"), commands[0])
	assert.Equal(t, Set("network.loopback.device", "lo"), commands[1])
	assert.Equal(t, Set("network.loopback.proto", "static"), commands[2])
	assert.Equal(t, AddList("network.loopback.ipaddr", "127.0.0.1/8"), commands[3])
	assert.Equal(t, Set("network.br_lan", "device"), commands[4])

	// List elements stay as individual add_list commands, never collapsed.
	assert.Equal(t, AddList("network.br_lan.ports", "lan1"), commands[6])
	assert.Equal(t, AddList("network.br_lan.ports", "lan2"), commands[7])
}

func TestParseExport(t *testing.T) {
	commands := ParseExport(sampleExport)
	require.Len(t, commands, 5)

	assert.Equal(t, Set("network.loopback", "interface"), commands[0])
	assert.Equal(t, Set("network.br_lan.type", "bridge"), commands[4])
}

func TestParseExportSkipsNoise(t *testing.T) {
	raw := `
# comment
not a uci line

network.lan=interface
`
	commands := ParseExport(raw)
	require.Len(t, commands, 1)
	assert.Equal(t, Set("network.lan", "interface"), commands[0])
}

func TestParseAutoDetects(t *testing.T) {
	fromShow := Parse("network", sampleShow)
	fromExport := Parse("network", sampleExport)
	assert.Len(t, fromShow, 8)
	assert.Len(t, fromExport, 5)
}
