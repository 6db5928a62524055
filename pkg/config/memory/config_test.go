package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/syrup-cpi-demo/pkg/config"
)

func TestConfig(t *testing.T) {
	ctx := context.Background()

	c := NewConfig(nil)
	_, err := c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	c.SetValue("value")
	val, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	c.SetValue(nil)
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	expected := errors.New("unavailable")
	c.SetValue("value")
	c.SetError(expected)
	_, err = c.Get(ctx)
	assert.Equal(t, expected, err)

	c.SetError(nil)
	val, err = c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	c.Shutdown()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}
