package env

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/syrup-cpi-demo/pkg/config"
)

func TestConfig(t *testing.T) {
	const env = "ENV_CONFIG_TEST_VAR"

	t.Setenv(env, "value")
	v, err := NewConfig("env_config_test_var").Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []byte("value"), v)

	t.Setenv(env, "  value\n")
	v, err = NewConfig(env).Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []byte("value"), v)

	for _, blank := range []string{"", "   "} {
		t.Setenv(env, blank)
		v, err = NewConfig(env).Get(context.Background())
		assert.Nil(t, v)
		assert.Equal(t, config.ErrNoValue, err)
	}
}

func TestTypedConfigs(t *testing.T) {
	ctx := context.Background()

	t.Setenv("ENV_UINT64_TEST_VAR", "200000")
	t.Setenv("ENV_DURATION_TEST_VAR", "45s")
	t.Setenv("ENV_BOOL_TEST_VAR", "true")

	assert.EqualValues(t, 200000, NewUint64Config("ENV_UINT64_TEST_VAR", 1).Get(ctx))
	assert.Equal(t, 45*time.Second, NewDurationConfig("ENV_DURATION_TEST_VAR", time.Second).Get(ctx))
	assert.True(t, NewBoolConfig("ENV_BOOL_TEST_VAR", false).Get(ctx))
	assert.Equal(t, "fallback", NewStringConfig("ENV_UNSET_TEST_VAR", "fallback").Get(ctx))
}
