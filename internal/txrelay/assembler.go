package txrelay

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/escrowhq/escrow-gateway/internal/gas"
	"github.com/escrowhq/escrow-gateway/internal/interfaces"
	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/escrowhq/escrow-gateway/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrNonce               = errors.New("cannot reserve nonce")
	ErrSign                = errors.New("cannot sign transaction")
	ErrSubmit              = errors.New("cannot submit transaction")
	ErrTxReverted          = errors.New("transaction reverted on chain")
	ErrConfirmationTimeout = errors.New("transaction not confirmed within timeout")
)

// EthNode is the node surface the assembler needs. blockchain.EthereumClient
// satisfies it; tests substitute a narrow mock.
type EthNode interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// CallRequest describes a contract call to be turned into a signed
// transaction. GasPriceWei overrides the resolved price when positive.
type CallRequest struct {
	To          common.Address
	Value       *big.Int
	Data        []byte
	GasPriceWei *big.Int
}

// Quote is the resolved fee plan, gas limit and total cost for one request.
// It is produced once and reused for signing so estimation and submission
// can never disagree.
type Quote struct {
	Plan     *gas.FeePlan
	GasLimit uint64
	CostWei  *big.Int
}

type AssemblerConfig struct {
	MaxCostWei          *big.Int
	MaxPriceGwei        int64
	ConfirmTimeout      time.Duration
	ReceiptPollInterval time.Duration
}

// Assembler builds, signs and submits transactions for a single signer.
// Transactions are signed offline and pushed through eth_sendRawTransaction,
// so no key material ever reaches the node.
type Assembler struct {
	// deps
	node      EthNode
	signer    wallet.Signer
	pricer    *gas.Pricer
	estimator *gas.Estimator
	log       interfaces.ILogger

	cfg AssemblerConfig

	// state
	mu       sync.Mutex
	chainID  *big.Int
	nonce    uint64
	nonceSet bool
}

func NewAssembler(node EthNode, signer wallet.Signer, pricer *gas.Pricer, estimator *gas.Estimator, cfg AssemblerConfig, log interfaces.ILogger) *Assembler {
	if cfg.ConfirmTimeout == 0 {
		cfg.ConfirmTimeout = 90 * time.Second
	}
	if cfg.ReceiptPollInterval == 0 {
		cfg.ReceiptPollInterval = 2 * time.Second
	}
	return &Assembler{
		node:      node,
		signer:    signer,
		pricer:    pricer,
		estimator: estimator,
		cfg:       cfg,
		log:       log,
	}
}

func (a *Assembler) Address() common.Address {
	return a.signer.Address()
}

// Quote resolves the fee plan, estimates the gas limit and enforces the cost
// ceiling. A *gas.CostLimitError carries the full breakdown on rejection.
func (a *Assembler) Quote(ctx context.Context, req CallRequest) (*Quote, error) {
	plan, err := a.pricer.ResolvePlan(ctx, req.GasPriceWei)
	if err != nil {
		return nil, err
	}

	limit := a.estimator.GasLimit(ctx, a.signer.Address(), req.To, req.Value, req.Data)

	cost, err := gas.CheckCost(limit, plan, a.cfg.MaxCostWei, a.cfg.MaxPriceGwei)
	if err != nil {
		return nil, err
	}

	return &Quote{Plan: plan, GasLimit: limit, CostWei: cost}, nil
}

// SendQuoted signs the request under a previously produced quote and submits
// the raw transaction bytes. The cached nonce is dropped on submit failure so
// the next attempt re-reads the pending nonce from the node.
func (a *Assembler) SendQuoted(ctx context.Context, req CallRequest, quote *Quote) (common.Hash, error) {
	chainID, err := a.getChainID(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	nonce, err := a.reserveNonce(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	tx := buildTx(chainID, nonce, req, quote)

	signed, err := a.signer.SignTx(ctx, tx, chainID)
	if err != nil {
		a.resetNonce()
		return common.Hash{}, lib.WrapError(ErrSign, err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		a.resetNonce()
		return common.Hash{}, lib.WrapError(ErrSubmit, err)
	}

	var hash common.Hash
	err = a.node.CallContext(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(raw))
	if err != nil {
		a.resetNonce()
		return common.Hash{}, lib.WrapError(ErrSubmit, err)
	}

	a.log.Infof("submitted tx %s: nonce %d, gas limit %d, %s price %.4f gwei",
		hash.Hex(), nonce, quote.GasLimit, quote.Plan.Model, gas.WeiToGwei(quote.Plan.EffectiveGasPrice()))

	return hash, nil
}

// Send is Quote followed by SendQuoted.
func (a *Assembler) Send(ctx context.Context, req CallRequest) (common.Hash, error) {
	quote, err := a.Quote(ctx, req)
	if err != nil {
		return common.Hash{}, err
	}
	return a.SendQuoted(ctx, req, quote)
}

// WaitMined polls for the receipt until the confirmation timeout. A missing
// receipt after the timeout is ErrConfirmationTimeout, which is a distinct
// condition from ErrTxReverted: the transaction may still land later.
func (a *Assembler) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt

	err := lib.Poll(ctx, a.cfg.ConfirmTimeout, func() error {
		r, err := a.node.TransactionReceipt(ctx, hash)
		if err != nil {
			return err
		}
		receipt = r
		return nil
	}, a.cfg.ReceiptPollInterval)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, lib.WrapError(ErrConfirmationTimeout, err)
	}

	if receipt.Status == types.ReceiptStatusFailed {
		return receipt, ErrTxReverted
	}
	return receipt, nil
}

func (a *Assembler) getChainID(ctx context.Context) (*big.Int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.chainID != nil {
		return a.chainID, nil
	}
	id, err := a.node.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	a.chainID = id
	return id, nil
}

func (a *Assembler) reserveNonce(ctx context.Context) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.nonceSet {
		pending, err := a.node.PendingNonceAt(ctx, a.signer.Address())
		if err != nil {
			return 0, lib.WrapError(ErrNonce, err)
		}
		a.nonce = pending
		a.nonceSet = true
	}

	nonce := a.nonce
	a.nonce++
	return nonce, nil
}

func (a *Assembler) resetNonce() {
	a.mu.Lock()
	a.nonceSet = false
	a.mu.Unlock()
}

func buildTx(chainID *big.Int, nonce uint64, req CallRequest, quote *Quote) *types.Transaction {
	value := req.Value
	if value == nil {
		value = big.NewInt(0)
	}
	to := req.To

	if quote.Plan.Model == gas.FeeModelDynamic {
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: quote.Plan.MaxPriorityFeePerGas,
			GasFeeCap: quote.Plan.MaxFeePerGas,
			Gas:       quote.GasLimit,
			To:        &to,
			Value:     value,
			Data:      req.Data,
		})
	}

	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: quote.Plan.GasPrice,
		Gas:      quote.GasLimit,
		To:       &to,
		Value:    value,
		Data:     req.Data,
	})
}
