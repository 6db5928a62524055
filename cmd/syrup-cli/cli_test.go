package main

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/syrup-cpi-demo/pkg/rate"
	"github.com/code-payments/syrup-cpi-demo/pkg/solana"
)

// writeKeypair stores priv the way the Solana CLI does, as a JSON byte array.
func writeKeypair(t *testing.T, priv ed25519.PrivateKey) string {
	ints := make([]int, len(priv))
	for i, b := range priv {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, raw, 0600))
	return path
}

func TestLoadKeypair(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	path := writeKeypair(t, priv)

	ints := make([]int, len(priv))
	for i, b := range priv {
		ints[i] = int(b)
	}

	loaded, err := loadKeypair(path)
	require.NoError(t, err)
	assert.Equal(t, priv, loaded)

	_, err = loadKeypair("")
	assert.Error(t, err)
	_, err = loadKeypair(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	for _, invalid := range []string{
		`{"key": 1}`,
		`[1, 2, 3]`,
		`[256]`,
	} {
		_, err = parseKeypair([]byte(invalid))
		assert.Error(t, err, invalid)
	}

	// Public half does not match the seed
	tampered := append([]int(nil), ints...)
	tampered[63] ^= 0xff
	raw, err := json.Marshal(tampered)
	require.NoError(t, err)
	_, err = parseKeypair(raw)
	assert.Error(t, err)
}

func TestParsePublicKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	actual, err := parsePublicKey("pool", base58.Encode(pub))
	require.NoError(t, err)
	assert.Equal(t, pub, actual)

	_, err = parsePublicKey("pool", "")
	assert.Error(t, err)
	_, err = parsePublicKey("pool", "0OIl")
	assert.Error(t, err)
	_, err = parsePublicKey("pool", base58.Encode(pub[:16]))
	assert.Error(t, err)
}

func TestDepositFlags(t *testing.T) {
	keys := make([]string, 6)
	for i := range keys {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = base58.Encode(pub)
	}

	f := depositFlags{
		amount:         "12.5",
		globals:        keys[0],
		pool:           keys[1],
		poolSharesMint: keys[2],
		poolBaseMint:   keys[3],
		poolLocker:     keys[4],
		lenderUser:     keys[5],
	}

	amount, req, err := f.parse()
	require.NoError(t, err)
	assert.EqualValues(t, 12_500_000, amount)
	assert.Equal(t, keys[0], base58.Encode(req.Globals))
	assert.Equal(t, keys[1], base58.Encode(req.Pool))
	assert.Equal(t, keys[2], base58.Encode(req.SharesMint))
	assert.Equal(t, keys[3], base58.Encode(req.BaseMint))
	assert.Equal(t, keys[4], base58.Encode(req.PoolLocker))
	assert.Equal(t, keys[5], base58.Encode(req.LenderUser))
	assert.Empty(t, req.LenderLocker)

	f.amount = "0.0000001"
	_, _, err = f.parse()
	assert.Error(t, err)

	f.amount = "1"
	f.poolLocker = "invalid"
	_, _, err = f.parse()
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	v := viper.New()
	v.Set("syrup_address", "SyrupAddress1111111111111111111111111111111")
	v.Set("cluster", "testnet")
	v.Set("keypair", "/tmp/id.json")
	v.Set("commitment", "finalized")

	config, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/id.json", config.Keypair)

	endpoint, err := config.endpoint()
	require.NoError(t, err)
	assert.Equal(t, string(solana.EnvironmentTest), endpoint)

	config.RPCEndpoint = "http://localhost:9000"
	endpoint, err = config.endpoint()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", endpoint)

	commitment, err := config.commitment()
	require.NoError(t, err)
	assert.Equal(t, solana.CommitmentFinalized, commitment)

	assert.IsType(t, &rate.NoLimiter{}, config.rateLimiter())
	config.RPCRateLimit = 10
	assert.NotNil(t, config.rateLimiter())
	assert.NoError(t, config.rateLimiter().Wait(context.Background(), "getAccountInfo"))

	v.Set("keypair", "")
	config, err = loadConfig(v)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(config.Keypair, filepath.Join(".config", "solana", "id.json")))

	for _, invalid := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		v.Set("rpc_rate_limit", invalid)
		_, err = loadConfig(v)
		assert.Error(t, err, invalid)
	}
	v.Set("rpc_rate_limit", 0.0)

	v.Set("syrup_address", "")
	_, err = loadConfig(v)
	assert.Error(t, err)
}
