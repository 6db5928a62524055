package solana

import (
	"net/url"

	"github.com/pkg/errors"
)

// Environment is a well known cluster RPC endpoint.
type Environment string

const (
	EnvironmentLocal Environment = "http://127.0.0.1:8899"
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
)

// EnvironmentFromCluster resolves a cluster moniker (localnet, devnet,
// testnet, mainnet-beta) to its RPC endpoint. An http or https URL is
// returned as is.
func EnvironmentFromCluster(cluster string) (Environment, error) {
	switch cluster {
	case "localnet", "localhost":
		return EnvironmentLocal, nil
	case "devnet":
		return EnvironmentDev, nil
	case "testnet":
		return EnvironmentTest, nil
	case "mainnet-beta", "mainnet":
		return EnvironmentProd, nil
	}

	u, err := url.Parse(cluster)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.Errorf("unknown cluster: %q", cluster)
	}
	return Environment(cluster), nil
}
