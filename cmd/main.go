package main

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/escrowhq/escrow-gateway/internal/config"
	"github.com/escrowhq/escrow-gateway/internal/contractmanager"
	"github.com/escrowhq/escrow-gateway/internal/gas"
	"github.com/escrowhq/escrow-gateway/internal/handlers/httphandlers"
	"github.com/escrowhq/escrow-gateway/internal/interfaces"
	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/escrowhq/escrow-gateway/internal/repositories/backend"
	"github.com/escrowhq/escrow-gateway/internal/repositories/blockchain"
	"github.com/escrowhq/escrow-gateway/internal/txrelay"
	"github.com/escrowhq/escrow-gateway/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := start(); err != nil {
		panic(err)
	}
}

func start() error {
	_ = godotenv.Load(".env")

	var cfg config.Config
	err := config.LoadConfig(&cfg, &os.Args)
	if err != nil {
		return err
	}
	cfg.SetDefaults()

	log, err := lib.NewLogger(cfg.Log.LevelApp, cfg.Log.Color, cfg.Log.IsProd, cfg.Log.JSON, cfg.Log.FolderPath)
	if err != nil {
		return err
	}
	ethLog, err := lib.NewLogger(cfg.Log.LevelEthereum, cfg.Log.Color, cfg.Log.IsProd, cfg.Log.JSON, cfg.Log.FolderPath)
	if err != nil {
		return err
	}
	contractLog, err := lib.NewLogger(cfg.Log.LevelContract, cfg.Log.Color, cfg.Log.IsProd, cfg.Log.JSON, cfg.Log.FolderPath)
	if err != nil {
		return err
	}
	txLog, err := lib.NewLogger(cfg.Log.LevelTxRelay, cfg.Log.Color, cfg.Log.IsProd, cfg.Log.JSON, cfg.Log.FolderPath)
	if err != nil {
		return err
	}

	defer func() {
		_ = log.Sync()
	}()

	log.Infof("escrow gateway %s starting, environment %s", config.BuildVersion, cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-shutdownChan
		log.Warnf("Received signal: %s", s)
		cancel()

		s = <-shutdownChan
		log.Warnf("Received signal: %s. Forcing exit...", s)
		os.Exit(1)
	}()

	ethClient, err := blockchain.DialContext(ctx, cfg.Blockchain.EthNodeAddress)
	if err != nil {
		return err
	}

	var signer wallet.Signer
	switch {
	case cfg.Wallet.PrivateKey != "":
		signer, err = wallet.NewKeyedSignerFromHex(cfg.Wallet.PrivateKey)
	case cfg.Wallet.Mnemonic != "":
		signer, err = wallet.NewKeyedSignerFromMnemonic(cfg.Wallet.Mnemonic, cfg.Wallet.AccountIndex)
	default:
		signer, err = remoteSigner(ctx, cfg.Wallet.RemoteSignerURL, log)
	}
	if err != nil {
		return err
	}
	log.Infof("wallet address %s", signer.Address().Hex())

	authClient, err := backend.NewAuthClient(cfg.Backend.AuthURL, nil)
	if err != nil {
		return err
	}
	session := wallet.NewSession(signer, authClient, log.Named("AUTH"))

	contractsClient, err := backend.NewContractsClient(cfg.Backend.ContractsURL, session)
	if err != nil {
		return err
	}
	relayClient, err := backend.NewRelayClient(cfg.Backend.RelayURL, session)
	if err != nil {
		return err
	}

	var maxCostWei *big.Int
	if cfg.Gas.MaxCostWei != "" {
		maxCostWei, _ = new(big.Int).SetString(cfg.Gas.MaxCostWei, 10)
	}

	pricer := gas.NewPricer(gas.PricerConfig{
		TrustedPriceGwei: cfg.Gas.TrustedPriceGwei,
		MinPriceGwei:     cfg.Gas.MinPriceGwei,
		MaxPriceGwei:     cfg.Gas.MaxPriceGwei,
	}, ethClient, ethLog.Named("GAS"))

	estimator := gas.NewEstimator(ethClient, gas.FallbackLimits{
		Approve: cfg.Gas.LimitApprove,
		Deposit: cfg.Gas.LimitDeposit,
		Default: cfg.Gas.LimitDefault,
	}, ethLog.Named("GAS"))

	assembler := txrelay.NewAssembler(ethClient, signer, pricer, estimator, txrelay.AssemblerConfig{
		MaxCostWei:     maxCostWei,
		MaxPriceGwei:   cfg.Gas.MaxPriceGwei,
		ConfirmTimeout: cfg.Gas.ConfirmTimeout,
	}, txLog)

	sponsor := txrelay.NewSponsor(relayClient, ethClient, txrelay.SponsorConfig{
		FundTimeout: cfg.Gas.FundTimeout,
	}, txLog)

	txService := txrelay.NewService(assembler, sponsor, txrelay.NewHistory(cfg.Gas.HistorySize), txLog)

	tokenGateway, err := blockchain.NewERC20Gateway(common.HexToAddress(cfg.Escrow.TokenAddress), ethClient, ethLog)
	if err != nil {
		return err
	}

	logWatcher := blockchain.NewLogWatcher(ethClient, !cfg.Blockchain.UseSubscriptions, cfg.Blockchain.MaxReconnects, cfg.Blockchain.PollingInterval, ethLog.Named("WATCHER"))

	agreementFactory := func(addr common.Address) (contractmanager.AgreementGateway, error) {
		return blockchain.NewEscrowGateway(addr, ethClient, logWatcher, contractLog.Named(lib.AddrShort(addr.Hex())))
	}

	manager := contractmanager.NewContractManager(contractsClient, relayClient, txService, tokenGateway, agreementFactory, contractmanager.Config{
		Sponsored: cfg.Escrow.Sponsored,
	}, contractLog)

	// headless wallets authenticate eagerly, prompt-bound ones on first use
	if err := session.Establish(ctx); err != nil {
		if errors.Is(err, wallet.ErrHeadlessUnsupported) {
			log.Infof("wallet requires a prompt, session will be established lazily")
		} else {
			log.Warnf("eager session setup failed, will retry lazily: %s", err)
		}
	}

	publicUrl, err := url.Parse(cfg.Web.PublicUrl)
	if err != nil {
		return err
	}

	handler := httphandlers.NewHTTPHandler(manager, txService, session, tokenGateway, signer.Headless(), publicUrl, cfg.GetSanitized(), log.Named("HTTP"))

	server := &http.Server{
		Addr:    cfg.Web.Address,
		Handler: handler,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	g.Go(func() error {
		log.Infof("http server is listening: %s", cfg.Web.Address)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	err = g.Wait()
	log.Infof("App exited due to %s", err)
	return nil
}

// remoteSigner connects to an external wallet over JSON-RPC and signs for
// the first account it exposes.
func remoteSigner(ctx context.Context, urlString string, log interfaces.ILogger) (wallet.Signer, error) {
	provider, err := wallet.NewRPCProvider(ctx, urlString)
	if err != nil {
		return nil, err
	}
	addr, err := wallet.RemoteAccount(ctx, provider)
	if err != nil {
		return nil, err
	}
	return wallet.NewRemoteSigner(provider, addr, log.Named("WALLET")), nil
}
