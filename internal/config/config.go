package config

import (
	"strings"
	"time"
)

// BuildVersion is set at link time.
var BuildVersion = "development"

// Validation tags described here: https://pkg.go.dev/github.com/go-playground/validator/v10
type Config struct {
	Backend struct {
		AuthURL      string `env:"BACKEND_AUTH_URL"      flag:"backend-auth-url"      validate:"required,url" desc:"base url of the authentication service"`
		ContractsURL string `env:"BACKEND_CONTRACTS_URL" flag:"backend-contracts-url" validate:"required,url" desc:"base url of the contract storage service"`
		RelayURL     string `env:"BACKEND_RELAY_URL"     flag:"backend-relay-url"     validate:"required,url" desc:"base url of the gas-sponsoring relay service"`
	}
	Blockchain struct {
		EthNodeAddress   string        `env:"ETH_NODE_ADDRESS"      flag:"eth-node-address"      validate:"required,url"`
		UseSubscriptions bool          `env:"ETH_USE_SUBSCRIPTIONS" flag:"eth-use-subscriptions" desc:"use websocket subscriptions for blockchain events"`
		PollingInterval  time.Duration `env:"ETH_POLLING_INTERVAL"  flag:"eth-polling-interval"  validate:"omitempty" desc:"interval between polling for blockchain events"`
		MaxReconnects    int           `env:"ETH_MAX_RECONNECTS"    flag:"eth-max-reconnects"    validate:"omitempty,number" desc:"maximum number of reconnect attempts"`
	}
	Environment string `env:"ENVIRONMENT" flag:"environment"`
	Escrow      struct {
		TokenAddress string `env:"ESCROW_TOKEN_ADDRESS" flag:"escrow-token-address" validate:"required,eth_addr" desc:"address of the stablecoin used for escrow deposits"`
		Sponsored    bool   `env:"ESCROW_SPONSORED_GAS" flag:"escrow-sponsored-gas" desc:"route gas costs through the sponsoring relay instead of the signer balance"`
	}
	Gas struct {
		TrustedPriceGwei int64         `env:"GAS_TRUSTED_PRICE_GWEI" flag:"gas-trusted-price-gwei" validate:"omitempty,number" desc:"network-specific gas price that overrides the provider-reported one"`
		MinPriceGwei     int64         `env:"GAS_MIN_PRICE_GWEI"     flag:"gas-min-price-gwei"     validate:"omitempty,number" desc:"floor for the gas price, also drives the mis-scale sanity check"`
		MaxPriceGwei     int64         `env:"GAS_MAX_PRICE_GWEI"     flag:"gas-max-price-gwei"     validate:"omitempty,number" desc:"hard cap for the gas price"`
		MaxCostWei       string        `env:"GAS_MAX_COST_WEI"       flag:"gas-max-cost-wei"       validate:"omitempty,number" desc:"refuse any transaction whose total gas cost exceeds this"`
		LimitApprove     uint64        `env:"GAS_LIMIT_APPROVE"      flag:"gas-limit-approve"      validate:"omitempty,number" desc:"static gas limit fallback for token approvals"`
		LimitDeposit     uint64        `env:"GAS_LIMIT_DEPOSIT"      flag:"gas-limit-deposit"      validate:"omitempty,number" desc:"static gas limit fallback for escrow deposits"`
		LimitDefault     uint64        `env:"GAS_LIMIT_DEFAULT"      flag:"gas-limit-default"      validate:"omitempty,number" desc:"static gas limit fallback for everything else"`
		ConfirmTimeout   time.Duration `env:"GAS_CONFIRM_TIMEOUT"    flag:"gas-confirm-timeout"    validate:"omitempty" desc:"how long to wait for a submitted transaction to be mined"`
		FundTimeout      time.Duration `env:"GAS_FUND_TIMEOUT"       flag:"gas-fund-timeout"       validate:"omitempty" desc:"how long to wait for a sponsorship top-up to land"`
		HistorySize      int           `env:"GAS_TX_HISTORY_SIZE"    flag:"gas-tx-history-size"    validate:"omitempty,number" desc:"number of recent submissions kept for diagnostics"`
	}
	Log struct {
		Color         bool   `env:"LOG_COLOR"          flag:"log-color"`
		FolderPath    string `env:"LOG_FOLDER_PATH"    flag:"log-folder-path"    validate:"omitempty,dirpath" desc:"enables file logging and sets the folder path"`
		IsProd        bool   `env:"LOG_IS_PROD"        flag:"log-is-prod"        validate:"" desc:"affects the format of the log output"`
		JSON          bool   `env:"LOG_JSON"           flag:"log-json"`
		LevelApp      string `env:"LOG_LEVEL_APP"      flag:"log-level-app"      validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
		LevelContract string `env:"LOG_LEVEL_CONTRACT" flag:"log-level-contract" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
		LevelEthereum string `env:"LOG_LEVEL_ETHEREUM" flag:"log-level-ethereum" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
		LevelTxRelay  string `env:"LOG_LEVEL_TX_RELAY" flag:"log-level-tx-relay" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	}
	Wallet struct {
		PrivateKey      string `env:"WALLET_PRIVATE_KEY" flag:"wallet-private-key" validate:"required_without_all=Mnemonic RemoteSignerURL"`
		Mnemonic        string `env:"WALLET_MNEMONIC"    flag:"wallet-mnemonic"    validate:"required_without_all=PrivateKey RemoteSignerURL"`
		AccountIndex    int    `env:"WALLET_ACCOUNT_INDEX" flag:"wallet-account-index" validate:"omitempty,number" desc:"derivation index used with the mnemonic"`
		RemoteSignerURL string `env:"WALLET_REMOTE_SIGNER_URL" flag:"wallet-remote-signer-url" validate:"omitempty,url" desc:"json-rpc endpoint of an external signer, every signature is prompted there"`
	}
	Web struct {
		Address   string `env:"WEB_ADDRESS"    flag:"web-address"    validate:"required,hostname_port" desc:"http server address host:port"`
		PublicUrl string `env:"WEB_PUBLIC_URL" flag:"web-public-url" validate:"omitempty,url"          desc:"public url of the gateway, falls back to web-address if empty"`
	}
}

func (cfg *Config) SetDefaults() {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Blockchain
	if cfg.Blockchain.MaxReconnects == 0 {
		cfg.Blockchain.MaxReconnects = 30
	}
	if cfg.Blockchain.PollingInterval == 0 {
		cfg.Blockchain.PollingInterval = 10 * time.Second
	}

	// Gas
	if cfg.Gas.MinPriceGwei == 0 {
		cfg.Gas.MinPriceGwei = 1
	}
	if cfg.Gas.MaxPriceGwei == 0 {
		cfg.Gas.MaxPriceGwei = 300
	}
	if cfg.Gas.LimitApprove == 0 {
		cfg.Gas.LimitApprove = 60_000
	}
	if cfg.Gas.LimitDeposit == 0 {
		cfg.Gas.LimitDeposit = 150_000
	}
	if cfg.Gas.LimitDefault == 0 {
		cfg.Gas.LimitDefault = 120_000
	}
	if cfg.Gas.ConfirmTimeout == 0 {
		cfg.Gas.ConfirmTimeout = 90 * time.Second
	}
	if cfg.Gas.FundTimeout == 0 {
		cfg.Gas.FundTimeout = 60 * time.Second
	}
	if cfg.Gas.HistorySize == 0 {
		cfg.Gas.HistorySize = 100
	}

	// Wallet

	// normalizes private key
	cfg.Wallet.PrivateKey = strings.TrimPrefix(cfg.Wallet.PrivateKey, "0x")

	// Log
	if cfg.Log.LevelApp == "" {
		cfg.Log.LevelApp = "debug"
	}
	if cfg.Log.LevelContract == "" {
		cfg.Log.LevelContract = "debug"
	}
	if cfg.Log.LevelEthereum == "" {
		cfg.Log.LevelEthereum = "info"
	}
	if cfg.Log.LevelTxRelay == "" {
		cfg.Log.LevelTxRelay = "info"
	}

	// Web
	if cfg.Web.Address == "" {
		cfg.Web.Address = "0.0.0.0:8080"
	}
	if cfg.Web.PublicUrl == "" {
		cfg.Web.PublicUrl = "http://localhost:8080"
	}
}

// GetSanitized returns a copy of the config with sensitive data removed
// explicitly adding each field here to avoid accidentally leaking sensitive data
func (cfg *Config) GetSanitized() interface{} {
	publicCfg := Config{}

	publicCfg.Backend.AuthURL = cfg.Backend.AuthURL
	publicCfg.Backend.ContractsURL = cfg.Backend.ContractsURL
	publicCfg.Backend.RelayURL = cfg.Backend.RelayURL

	publicCfg.Blockchain.UseSubscriptions = cfg.Blockchain.UseSubscriptions
	publicCfg.Blockchain.PollingInterval = cfg.Blockchain.PollingInterval
	publicCfg.Blockchain.MaxReconnects = cfg.Blockchain.MaxReconnects

	publicCfg.Environment = cfg.Environment

	publicCfg.Escrow.TokenAddress = cfg.Escrow.TokenAddress
	publicCfg.Escrow.Sponsored = cfg.Escrow.Sponsored

	publicCfg.Gas = cfg.Gas

	publicCfg.Log.Color = cfg.Log.Color
	publicCfg.Log.FolderPath = cfg.Log.FolderPath
	publicCfg.Log.IsProd = cfg.Log.IsProd
	publicCfg.Log.JSON = cfg.Log.JSON
	publicCfg.Log.LevelApp = cfg.Log.LevelApp
	publicCfg.Log.LevelContract = cfg.Log.LevelContract
	publicCfg.Log.LevelEthereum = cfg.Log.LevelEthereum
	publicCfg.Log.LevelTxRelay = cfg.Log.LevelTxRelay

	publicCfg.Wallet.AccountIndex = cfg.Wallet.AccountIndex
	publicCfg.Wallet.RemoteSignerURL = cfg.Wallet.RemoteSignerURL

	publicCfg.Web.Address = cfg.Web.Address
	publicCfg.Web.PublicUrl = cfg.Web.PublicUrl

	return publicCfg
}
