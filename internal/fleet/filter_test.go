package fleet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testConfig() *Config {
	return &Config{
		Devices: map[string]Device{
			"router":    {Target: "10.0.0.1", Tags: []string{"gateway"}},
			"ap-attic":  {Target: "10.0.0.2", Tags: []string{"ap", "mesh"}},
			"ap-garage": {Target: "10.0.0.3", Tags: []string{"ap"}},
		},
	}
}

func TestSelectAll(t *testing.T) {
	names := Select(testConfig(), Selector{})
	assert.Equal(t, []string{"ap-attic", "ap-garage", "router"}, names)
}

func TestSelectByGlob(t *testing.T) {
	names := Select(testConfig(), Selector{Target: "ap-*"})
	assert.Equal(t, []string{"ap-attic", "ap-garage"}, names)

	names = Select(testConfig(), Selector{Target: "router"})
	assert.Equal(t, []string{"router"}, names)

	names = Select(testConfig(), Selector{Target: "switch-*"})
	assert.Empty(t, names)
}

func TestSelectByTags(t *testing.T) {
	names := Select(testConfig(), Selector{Tags: []string{"ap"}})
	assert.Equal(t, []string{"ap-attic", "ap-garage"}, names)

	// AND logic: all tags must be present.
	names = Select(testConfig(), Selector{Tags: []string{"ap", "mesh"}})
	assert.Equal(t, []string{"ap-attic"}, names)
}

func TestSelectGlobAndTags(t *testing.T) {
	names := Select(testConfig(), Selector{Target: "ap-*", Tags: []string{"mesh"}})
	assert.Equal(t, []string{"ap-attic"}, names)
}
