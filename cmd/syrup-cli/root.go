package main

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/code-payments/syrup-cpi-demo/pkg/metrics"
	"github.com/code-payments/syrup-cpi-demo/pkg/rate"
	"github.com/code-payments/syrup-cpi-demo/pkg/solana"
	"github.com/code-payments/syrup-cpi-demo/pkg/wrapper"
	"github.com/code-payments/syrup-cpi-demo/pkg/wrapper/onchain"
)

// session holds everything a subcommand needs once the persistent flags and
// environment have been resolved.
type session struct {
	log *logrus.Entry

	config       *Config
	keypair      ed25519.PrivateKey
	syrupProgram ed25519.PublicKey
	commitment   solana.Commitment
	client       solana.Client

	newClient func(endpoint string, limiter rate.Limiter) solana.Client

	metricsProvider *newrelic.Application
}

func newSession() *session {
	return &session{
		log:       logrus.StandardLogger().WithField("type", "syrup-cli"),
		newClient: solana.NewWithRateLimiter,
	}
}

func newRootCommand() *cobra.Command {
	return newCommand(viper.GetViper(), newSession())
}

func newCommand(v *viper.Viper, s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "syrup-cli",
		Short:        "Validate and forward syrup lender operations",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.init(v)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			s.shutdown()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringP("syrup-address", "S", "", "The Syrup address on the network.")
	flags.StringP("keypair", "k", "", "Keypair path to be used. Defaults to ~/.config/solana/id.json.")
	flags.StringP("cluster", "c", defaultCluster, "Solana cluster name (devnet, testnet, mainnet-beta) or RPC URL.")

	_ = v.BindPFlag("syrup_address", flags.Lookup("syrup-address"))
	_ = v.BindPFlag("keypair", flags.Lookup("keypair"))
	_ = v.BindPFlag("cluster", flags.Lookup("cluster"))

	cmd.AddCommand(
		newDepositInitCommand(s),
		newDepositCommand(s),
	)

	return cmd
}

func (s *session) init(v *viper.Viper) error {
	config, err := loadConfig(v)
	if err != nil {
		return err
	}
	s.config = config

	s.metricsProvider, err = newMetricsProvider(config)
	if err != nil {
		return err
	}
	configureLogger(config, s.metricsProvider)

	if s.syrupProgram, err = parsePublicKey("syrup-address", config.SyrupAddress); err != nil {
		return err
	}
	if s.commitment, err = config.commitment(); err != nil {
		return err
	}
	if s.keypair, err = loadKeypair(config.Keypair); err != nil {
		return err
	}

	endpoint, err := config.endpoint()
	if err != nil {
		return err
	}
	s.client = s.newClient(endpoint, config.rateLimiter())

	s.log.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"syrup":    config.SyrupAddress,
		"payer":    base58.Encode(s.keypair.Public().(ed25519.PublicKey)),
	}).Debug("session initialized")

	return nil
}

func (s *session) shutdown() {
	if s.metricsProvider != nil {
		s.metricsProvider.Shutdown(10 * time.Second)
	}
}

// forward runs fn against freshly built wrapper components and prints the
// signature once the transaction has landed.
func (s *session) forward(cmd *cobra.Command, fn func(ctx context.Context, loader *onchain.Loader, handler *wrapper.Handler) error) error {
	ctx := metrics.WithApplication(cmd.Context(), s.metricsProvider)
	ctx, end := metrics.StartTransaction(ctx, cmd.Name())
	defer end()

	protocol := onchain.NewProtocol(s.client, s.syrupProgram, s.commitment, onchain.WithEnvConfigs(), s.keypair)
	loader := onchain.NewLoader(s.client, s.syrupProgram, s.commitment, protocol.SignerKeys()...)
	handler := wrapper.NewHandler(protocol, s.syrupProgram)

	err := fn(ctx, loader, handler)
	sig, submitted := protocol.LastSignature()

	if err != nil {
		if submitted {
			return errors.Wrapf(err, "%s failed (%s), attempted signature %s", cmd.Name(), wrapper.Classify(err), sig.String())
		}
		return errors.Wrapf(err, "%s failed (%s)", cmd.Name(), wrapper.Classify(err))
	}

	if submitted {
		fmt.Fprintln(cmd.OutOrStdout(), sig.String())
	}
	return nil
}

func parsePublicKey(name, value string) (ed25519.PublicKey, error) {
	if len(value) == 0 {
		return nil, errors.Errorf("%s is required", name)
	}

	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", name)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid %s: expected %d bytes, got %d", name, ed25519.PublicKeySize, len(decoded))
	}
	return ed25519.PublicKey(decoded), nil
}
