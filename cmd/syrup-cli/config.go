package main

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	xrate "golang.org/x/time/rate"

	"github.com/code-payments/syrup-cpi-demo/pkg/metrics"
	"github.com/code-payments/syrup-cpi-demo/pkg/rate"
	"github.com/code-payments/syrup-cpi-demo/pkg/solana"
)

// Config is the CLI configuration, sourced from flags and then environment
// variables.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	// Cluster is a moniker (devnet, testnet, mainnet-beta) or an RPC URL.
	// RPCEndpoint, when set, takes precedence.
	Cluster     string `mapstructure:"cluster"`
	RPCEndpoint string `mapstructure:"rpc_endpoint"`

	// RPCRateLimit caps requests per second for each RPC method. Zero
	// disables limiting.
	RPCRateLimit float64 `mapstructure:"rpc_rate_limit"`

	// Keypair is the path to a Solana CLI JSON keypair used as fee payer and
	// signer.
	Keypair string `mapstructure:"keypair"`

	SyrupAddress string `mapstructure:"syrup_address"`
	Commitment   string `mapstructure:"commitment"`

	// Metrics are only reported when a license key is set
	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

const (
	defaultLogLevel   = "info"
	defaultAppName    = "syrup-cli"
	defaultCluster    = "devnet"
	defaultCommitment = "confirmed"
)

func init() {
	bindConfig(viper.GetViper())
}

func bindConfig(v *viper.Viper) {
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	_ = v.BindEnv("app_name", "APP_NAME")

	_ = v.BindEnv("cluster", "SOLANA_CLUSTER")
	_ = v.BindEnv("rpc_endpoint", "SOLANA_RPC_ENDPOINT")
	_ = v.BindEnv("rpc_rate_limit", "SOLANA_RPC_RATE_LIMIT")
	_ = v.BindEnv("keypair", "SOLANA_KEYPAIR")
	_ = v.BindEnv("commitment", "SOLANA_COMMITMENT")

	_ = v.BindEnv("syrup_address", "SYRUP_ADDRESS")

	_ = v.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")

	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("app_name", defaultAppName)
	v.SetDefault("commitment", defaultCommitment)
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if len(config.Keypair) == 0 {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve home directory")
		}
		config.Keypair = filepath.Join(home, ".config", "solana", "id.json")
	}

	if len(config.SyrupAddress) == 0 {
		return nil, errors.New("syrup address is required")
	}

	if config.RPCRateLimit < 0 || math.IsNaN(config.RPCRateLimit) || math.IsInf(config.RPCRateLimit, 0) {
		return nil, errors.Errorf("invalid rpc rate limit: %v", config.RPCRateLimit)
	}

	return &config, nil
}

func (c *Config) endpoint() (string, error) {
	if len(c.RPCEndpoint) > 0 {
		return c.RPCEndpoint, nil
	}

	env, err := solana.EnvironmentFromCluster(c.Cluster)
	if err != nil {
		return "", err
	}
	return string(env), nil
}

func (c *Config) rateLimiter() rate.Limiter {
	if c.RPCRateLimit == 0 {
		return &rate.NoLimiter{}
	}
	return rate.NewLocalRateLimiter(xrate.Limit(c.RPCRateLimit))
}

func (c *Config) commitment() (solana.Commitment, error) {
	return solana.CommitmentFromString(strings.ToLower(c.Commitment))
}

// configureLogger sets the level and formatter of the standard logger,
// forwarding logs to New Relic when an application is provided.
func configureLogger(config *Config, metricsProvider *newrelic.Application) {
	var formatter logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if metricsProvider != nil {
		formatter = metrics.NewLogFormatter(metricsProvider, formatter)
	}
	logrus.SetFormatter(formatter)

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stderr)
}

func newMetricsProvider(config *Config) (*newrelic.Application, error) {
	if len(config.NewRelicLicenseKey) == 0 {
		return nil, nil
	}

	nr, err := newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(config.AppName),
		newrelic.ConfigLicense(config.NewRelicLicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to new relic")
	}
	return nr, nil
}
