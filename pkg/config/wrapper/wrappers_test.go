package wrapper

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/syrup-cpi-demo/pkg/config"
	"github.com/code-payments/syrup-cpi-demo/pkg/config/memory"
)

func testValueConfig[T any](t *testing.T, ctor func(config.Config, T) config.Value[T], defaultValue, overriden T, raw []interface{}, unsupported interface{}) {
	mock := memory.NewConfig(nil)
	wrapper := ctor(mock, defaultValue)

	// Return the default value when no override is set
	val, err := wrapper.GetSafe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaultValue, val)
	assert.Equal(t, defaultValue, wrapper.Get(context.Background()))

	// The overriden value is returned when set, from any supported source type
	for _, r := range raw {
		mock.SetValue(r)
		val, err = wrapper.GetSafe(context.Background())
		require.NoError(t, err, r)
		assert.Equal(t, overriden, val, r)
		assert.Equal(t, overriden, wrapper.Get(context.Background()), r)
	}

	// The last observed config value is returned on error
	mock.SetError(errors.New("unavailable"))
	val, err = wrapper.GetSafe(context.Background())
	require.Error(t, err)
	assert.Equal(t, overriden, val)
	assert.Equal(t, overriden, wrapper.Get(context.Background()))

	// The default value is returned when the override no longer has a value
	mock.SetError(nil)
	mock.SetValue(nil)
	val, err = wrapper.GetSafe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaultValue, val)

	// Return an unsupported source value type
	mock.SetValue(unsupported)
	val, err = wrapper.GetSafe(context.Background())
	assert.Equal(t, ErrUnsuportedConversion, err)
	assert.Equal(t, defaultValue, val)

	wrapper.Shutdown()
	_, err = mock.Get(context.Background())
	assert.Equal(t, config.ErrShutdown, err)
}

func TestBoolConfig(t *testing.T) {
	testValueConfig(t, NewBoolConfig, true, false, []interface{}{false, "false", []byte("false")}, 1)
}

func TestUint64Config(t *testing.T) {
	var overriden uint64 = math.MaxUint64
	testValueConfig(t, NewUint64Config, 200_000, overriden, []interface{}{overriden, uint(overriden), strconv.FormatUint(overriden, 10), []byte(strconv.FormatUint(overriden, 10))}, -1)
}

func TestStringConfig(t *testing.T) {
	testValueConfig(t, NewStringConfig, "default", "override", []interface{}{"override", []byte("override")}, 1)
}

func TestDurationConfig(t *testing.T) {
	testValueConfig(t, NewDurationConfig, time.Second, 90*time.Second, []interface{}{90 * time.Second, "1m30s", []byte("90s")}, 1.5)
}

func TestParseFailure(t *testing.T) {
	mock := memory.NewConfig([]byte("not a number"))
	wrapper := NewUint64Config(mock, 5)

	val, err := wrapper.GetSafe(context.Background())
	assert.Error(t, err)
	assert.EqualValues(t, 5, val)
}
