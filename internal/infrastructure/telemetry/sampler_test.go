package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestNewResource_DefaultsVersion(t *testing.T) {
	res, err := newResource("wzledger", "")
	assert.NoError(t, err)

	found := false
	for _, kv := range res.Attributes() {
		if kv.Key == "service.version" {
			found = true
			assert.Equal(t, "dev", kv.Value.AsString())
		}
	}
	assert.True(t, found)
}
