package onchain

import (
	"time"

	"github.com/code-payments/syrup-cpi-demo/pkg/config"
	"github.com/code-payments/syrup-cpi-demo/pkg/config/env"
	"github.com/code-payments/syrup-cpi-demo/pkg/config/memory"
	"github.com/code-payments/syrup-cpi-demo/pkg/config/wrapper"
)

const (
	envConfigPrefix = "SYRUP_WRAPPER_"

	ComputeUnitLimitConfigEnvName = envConfigPrefix + "COMPUTE_UNIT_LIMIT"
	defaultComputeUnitLimit       = 0 // runtime default

	ComputeUnitPriceConfigEnvName = envConfigPrefix + "COMPUTE_UNIT_PRICE"
	defaultComputeUnitPrice       = 0 // micro-lamports, no priority fee

	ConfirmationTimeoutConfigEnvName = envConfigPrefix + "CONFIRMATION_TIMEOUT"
	defaultConfirmationTimeout       = 90 * time.Second

	StatusPollIntervalConfigEnvName = envConfigPrefix + "STATUS_POLL_INTERVAL"
	defaultStatusPollInterval       = time.Second
)

type conf struct {
	computeUnitLimit config.Uint64
	computeUnitPrice config.Uint64

	confirmationTimeout config.Duration
	statusPollInterval  config.Duration
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			computeUnitLimit: env.NewUint64Config(ComputeUnitLimitConfigEnvName, defaultComputeUnitLimit),
			computeUnitPrice: env.NewUint64Config(ComputeUnitPriceConfigEnvName, defaultComputeUnitPrice),

			confirmationTimeout: env.NewDurationConfig(ConfirmationTimeoutConfigEnvName, defaultConfirmationTimeout),
			statusPollInterval:  env.NewDurationConfig(StatusPollIntervalConfigEnvName, defaultStatusPollInterval),
		}
	}
}

type testOverrides struct {
	computeUnitLimit    uint64
	computeUnitPrice    uint64
	confirmationTimeout time.Duration
	statusPollInterval  time.Duration
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			computeUnitLimit: wrapper.NewUint64Config(memory.NewConfig(overrides.computeUnitLimit), defaultComputeUnitLimit),
			computeUnitPrice: wrapper.NewUint64Config(memory.NewConfig(overrides.computeUnitPrice), defaultComputeUnitPrice),

			confirmationTimeout: wrapper.NewDurationConfig(memory.NewConfig(overrides.confirmationTimeout), defaultConfirmationTimeout),
			statusPollInterval:  wrapper.NewDurationConfig(memory.NewConfig(overrides.statusPollInterval), defaultStatusPollInterval),
		}
	}
}
