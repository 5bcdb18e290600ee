package httphandlers

import (
	"context"
	"math/big"
	"net/http/pprof"
	"net/url"
	"time"

	"github.com/escrowhq/escrow-gateway/internal/config"
	"github.com/escrowhq/escrow-gateway/internal/contractmanager"
	"github.com/escrowhq/escrow-gateway/internal/escrow"
	"github.com/escrowhq/escrow-gateway/internal/interfaces"
	"github.com/escrowhq/escrow-gateway/internal/txrelay"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// ContractService is the lifecycle surface the handlers call.
// contractmanager.ContractManager satisfies it.
type ContractService interface {
	Create(ctx context.Context, form escrow.CreateForm, buyerAddress string, now time.Time) (*escrow.PendingContract, error)
	List(ctx context.Context, filter escrow.Filter, sortBy escrow.SortBy, desc bool, now time.Time) ([]escrow.Contract, error)
	Get(ctx context.Context, id string) (*escrow.Contract, error)
	Deposit(ctx context.Context, contractID string, progress contractmanager.DepositProgress) (common.Hash, error)
	Claim(ctx context.Context, contractID string) (common.Hash, error)
	RaiseDispute(ctx context.Context, contractID, party, reason string, refundPercent float64) (common.Hash, error)
	SubmitDisputeEntry(ctx context.Context, contractID, party, reason string, refundPercent float64) (bool, error)
}

// TxService is the submission pipeline surface. txrelay.Service satisfies it.
type TxService interface {
	Address() common.Address
	Quote(ctx context.Context, req txrelay.CallRequest) (*txrelay.Quote, error)
	History() []txrelay.HistoryEntry
}

// WalletSession is the auth session surface. wallet.Session satisfies it.
type WalletSession interface {
	Establish(ctx context.Context) error
	Token() string
	Clear()
}

// TokenReader reads the stablecoin balance for the wallet screen.
// blockchain.ERC20Gateway satisfies it.
type TokenReader interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
}

type HTTPHandler struct {
	contracts ContractService
	tx        TxService
	session   WalletSession
	token     TokenReader
	headless  bool
	publicUrl *url.URL
	sanitized interface{}
	metrics   *metricsRegistry
	log       interfaces.ILogger
}

func NewHTTPHandler(contracts ContractService, tx TxService, session WalletSession, token TokenReader, headless bool, publicUrl *url.URL, sanitizedCfg interface{}, log interfaces.ILogger) *gin.Engine {
	handl := &HTTPHandler{
		contracts: contracts,
		tx:        tx,
		session:   session,
		token:     token,
		headless:  headless,
		publicUrl: publicUrl,
		sanitized: sanitizedCfg,
		metrics:   newMetricsRegistry(),
		log:       log,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.GET("/healthcheck", handl.HealthCheck)
	r.GET("/config", handl.GetConfig)

	r.GET("/wallet", handl.GetWallet)
	r.GET("/wallet/balance", handl.GetWalletBalance)
	r.POST("/wallet/connect", handl.ConnectWallet)
	r.POST("/wallet/disconnect", handl.DisconnectWallet)

	r.GET("/contracts", handl.GetContracts)
	r.GET("/contracts/:ID", handl.GetContract)
	r.POST("/contracts", handl.CreateContract)
	r.POST("/contracts/:ID/deposit", handl.Deposit)
	r.POST("/contracts/:ID/claim", handl.Claim)
	r.POST("/contracts/:ID/dispute", handl.RaiseDispute)
	r.POST("/contracts/:ID/dispute-entries", handl.SubmitDisputeEntry)

	r.POST("/gas/quote", handl.QuoteGas)
	r.GET("/transactions", handl.GetTransactions)

	r.GET("/metrics", gin.WrapH(handl.metrics.handler()))
	r.Any("/debug/pprof/*action", gin.WrapF(pprof.Index))

	err := r.SetTrustedProxies(nil)
	if err != nil {
		panic(err)
	}

	return r
}

func (h *HTTPHandler) HealthCheck(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status":  "healthy",
		"version": config.BuildVersion,
	})
}

func (h *HTTPHandler) GetConfig(ctx *gin.Context) {
	ctx.JSON(200, h.sanitized)
}

func (h *HTTPHandler) GetWallet(ctx *gin.Context) {
	ctx.JSON(200, WalletResponse{
		Address:       h.tx.Address().Hex(),
		Headless:      h.headless,
		Authenticated: h.session.Token() != "",
	})
}

func (h *HTTPHandler) GetWalletBalance(ctx *gin.Context) {
	balance, err := h.token.BalanceOf(ctx, h.tx.Address())
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}
	ctx.JSON(200, mapBalance(balance))
}

// ConnectWallet establishes the backend session. Wallets that need a user
// prompt cannot sign eagerly; for those the session is established lazily on
// the first authenticated request and the response says so.
func (h *HTTPHandler) ConnectWallet(ctx *gin.Context) {
	err := h.session.Establish(ctx)
	if err == nil {
		ctx.JSON(200, gin.H{"status": "connected", "mode": "eager"})
		return
	}
	if isPromptRequired(err) {
		ctx.JSON(202, gin.H{"status": "connected", "mode": "lazy"})
		return
	}
	h.abortWithError(ctx, err)
}

func (h *HTTPHandler) DisconnectWallet(ctx *gin.Context) {
	h.session.Clear()
	ctx.JSON(200, gin.H{"status": "disconnected"})
}

func (h *HTTPHandler) QuoteGas(ctx *gin.Context) {
	var req QuoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{"error": err.Error()})
		return
	}

	callReq, err := req.toCallRequest()
	if err != nil {
		ctx.JSON(400, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.tx.Quote(ctx, callReq)
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.JSON(200, mapQuote(quote))
}

func (h *HTTPHandler) GetTransactions(ctx *gin.Context) {
	entries := h.tx.History()
	data := make([]Transaction, 0, len(entries))
	for _, e := range entries {
		data = append(data, mapTransaction(e))
	}
	ctx.JSON(200, data)
}
