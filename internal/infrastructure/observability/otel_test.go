package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	p, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	assert.NotNil(t, p.Tracer)
	assert.NotNil(t, p.Meter)
	assert.NotNil(t, p.Logs)
	require.NotNil(t, p.Logger)

	p.Logger.Info("observability disabled")
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewResource_IncludesServiceName(t *testing.T) {
	res, err := newResource(context.Background(), "planner-test")
	require.NoError(t, err)

	found := false
	for _, kv := range res.Attributes() {
		if kv.Key == "service.name" {
			found = true
		}
	}
	assert.True(t, found)
}
