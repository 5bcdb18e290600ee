package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ETH_NODE_ADDRESS", "https://node.example.com")
	t.Setenv("BACKEND_AUTH_URL", "https://auth.example.com")
	t.Setenv("BACKEND_CONTRACTS_URL", "https://contracts.example.com")
	t.Setenv("BACKEND_RELAY_URL", "https://relay.example.com")
	t.Setenv("ESCROW_TOKEN_ADDRESS", "0x5555555555555555555555555555555555555555")
	t.Setenv("WALLET_PRIVATE_KEY", "0xdeadbeef")
	t.Setenv("WEB_ADDRESS", "0.0.0.0:8080")
}

func TestLoadConfigFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GAS_TRUSTED_PRICE_GWEI", "30")

	cfg := &Config{}
	args := []string{"escrow-gateway"}
	require.NoError(t, LoadConfig(cfg, &args))
	cfg.SetDefaults()

	require.Equal(t, "https://node.example.com", cfg.Blockchain.EthNodeAddress)
	require.Equal(t, int64(30), cfg.Gas.TrustedPriceGwei)
	require.Equal(t, int64(1), cfg.Gas.MinPriceGwei)
	require.Equal(t, uint64(60_000), cfg.Gas.LimitApprove)
	// 0x prefix is stripped so the key parses the same from every source
	require.Equal(t, "deadbeef", cfg.Wallet.PrivateKey)
}

func TestFlagsOverrideEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GAS_MIN_PRICE_GWEI", "1")

	cfg := &Config{}
	args := []string{"escrow-gateway", "--gas-min-price-gwei=5"}
	require.NoError(t, LoadConfig(cfg, &args))

	require.Equal(t, int64(5), cfg.Gas.MinPriceGwei)
}

func TestLoadConfigAcceptsRemoteSignerOnly(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WALLET_PRIVATE_KEY", "")
	t.Setenv("WALLET_REMOTE_SIGNER_URL", "http://127.0.0.1:8546")

	cfg := &Config{}
	args := []string{"escrow-gateway"}
	require.NoError(t, LoadConfig(cfg, &args))
	require.Equal(t, "http://127.0.0.1:8546", cfg.Wallet.RemoteSignerURL)
}

func TestLoadConfigMissingRequired(t *testing.T) {
	cfg := &Config{}
	args := []string{"escrow-gateway"}
	err := LoadConfig(cfg, &args)
	require.ErrorIs(t, err, ErrConfigValidation)
}

func TestSanitizedConfigOmitsSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Wallet.PrivateKey = "secret"
	cfg.Wallet.Mnemonic = "tag volcano eight"
	cfg.Wallet.AccountIndex = 3

	public := cfg.GetSanitized().(Config)
	require.Empty(t, public.Wallet.PrivateKey)
	require.Empty(t, public.Wallet.Mnemonic)
	require.Equal(t, 3, public.Wallet.AccountIndex)
}
