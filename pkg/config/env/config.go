package env

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/code-payments/syrup-cpi-demo/pkg/config"
	"github.com/code-payments/syrup-cpi-demo/pkg/config/wrapper"
)

// variable is a snapshot of an environment variable taken at construction.
// Blank values are treated as unset.
type variable struct {
	value string
}

// NewConfig returns a config sourced from the environment variable named by
// the upper cased key.
func NewConfig(key string) config.Config {
	value, _ := os.LookupEnv(strings.ToUpper(key))
	return &variable{
		value: strings.TrimSpace(value),
	}
}

// Get implements config.Config.Get
func (v *variable) Get(_ context.Context) (interface{}, error) {
	if v.value == "" {
		return nil, config.ErrNoValue
	}
	return []byte(v.value), nil
}

// Shutdown implements config.Config.Shutdown
func (v *variable) Shutdown() {}

func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}

func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(key), defaultValue)
}
