package memory

import (
	"context"
	"sync"

	"github.com/code-payments/syrup-cpi-demo/pkg/config"
)

// Config is a mutable config for tests. A nil value reads as
// config.ErrNoValue.
type Config struct {
	mu       sync.RWMutex
	value    interface{}
	err      error
	shutdown bool
}

func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

// Get implements config.Config.Get
func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.shutdown {
		return nil, config.ErrShutdown
	}
	if c.err != nil {
		return nil, c.err
	}
	if c.value == nil {
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

// Shutdown implements config.Config.Shutdown
func (c *Config) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = true
}

// SetValue replaces the value returned by Get. A nil value clears it.
func (c *Config) SetValue(value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
}

// SetError makes Get fail with err until SetError(nil) is called.
func (c *Config) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}
