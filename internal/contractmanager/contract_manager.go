package contractmanager

import (
	"context"
	"errors"
	"math"
	"math/big"
	"time"

	"github.com/escrowhq/escrow-gateway/internal/currency"
	"github.com/escrowhq/escrow-gateway/internal/escrow"
	"github.com/escrowhq/escrow-gateway/internal/interfaces"
	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/escrowhq/escrow-gateway/internal/repositories/backend"
	"github.com/escrowhq/escrow-gateway/internal/repositories/blockchain"
	"github.com/escrowhq/escrow-gateway/internal/txrelay"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrNotDeployed       = errors.New("contract has no on-chain address yet")
	ErrDepositNotAllowed = errors.New("contract does not accept a deposit")
	ErrClaimNotAllowed   = errors.New("funds cannot be claimed")
	ErrDisputeNotAllowed = errors.New("dispute cannot be raised")
)

// ContractStore is the backend contract storage surface.
// backend.ContractsClient satisfies it.
type ContractStore interface {
	Create(ctx context.Context, req backend.CreateContractRequest) (*escrow.PendingContract, error)
	ListByWallet(ctx context.Context, wallet string) ([]escrow.Contract, error)
	GetByID(ctx context.Context, id string) (*escrow.Contract, error)
	SubmitDisputeEntry(ctx context.Context, contractID string, req backend.SubmitDisputeEntryRequest) error
}

// Relay is the sponsoring backend surface. backend.RelayClient satisfies it.
type Relay interface {
	CreateContract(ctx context.Context, req backend.RelayCreateContractRequest) (*backend.RelayCreateContractResponse, error)
	RaiseDispute(ctx context.Context, contractID string, party string) error
	NotifyDeposit(ctx context.Context, contractID string, txHash common.Hash) error
}

// TxSubmitter is the signing and submission pipeline. txrelay.Service
// satisfies it.
type TxSubmitter interface {
	Address() common.Address
	Quote(ctx context.Context, req txrelay.CallRequest) (*txrelay.Quote, error)
	SubmitAndWait(ctx context.Context, kind txrelay.TxKind, req txrelay.CallRequest, sponsored bool) (*types.Receipt, error)
}

// TokenGateway reads stablecoin state and packs approvals.
// blockchain.ERC20Gateway satisfies it.
type TokenGateway interface {
	Address() common.Address
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	ApproveCalldata(spender common.Address, amount *big.Int) ([]byte, error)
}

// AgreementGateway wraps one deployed escrow agreement.
// blockchain.EscrowGateway satisfies it.
type AgreementGateway interface {
	Address() common.Address
	GetContractInfo(ctx context.Context) (*blockchain.ContractInfo, error)
	CanDeposit(ctx context.Context) (bool, error)
	CanClaim(ctx context.Context) (bool, error)
	CanDispute(ctx context.Context) (bool, error)
	DepositFundsCalldata() ([]byte, error)
	RaiseDisputeCalldata() ([]byte, error)
	ClaimFundsCalldata() ([]byte, error)
	SubmitResolutionVoteCalldata(buyerRefundPercent int64) ([]byte, error)
	WatchEvents(ctx context.Context, fromBlock *big.Int) (*lib.Subscription, error)
}

// AgreementFactory builds a gateway for an agreement address. Agreements are
// deployed per contract, so gateways cannot be constructed up front.
type AgreementFactory func(address common.Address) (AgreementGateway, error)

type Config struct {
	// Sponsored routes gas costs through the sponsoring backend instead of
	// the signer's own balance.
	Sponsored bool

	AllowanceTimeout      time.Duration
	AllowancePollInterval time.Duration
}

// ContractManager orchestrates the contract lifecycle: creation through the
// backend, deposits/claims/disputes through signed on-chain transactions.
type ContractManager struct {
	store      ContractStore
	relay      Relay
	tx         TxSubmitter
	token      TokenGateway
	agreements AgreementFactory
	cfg        Config
	log        interfaces.ILogger
}

func NewContractManager(store ContractStore, relay Relay, tx TxSubmitter, token TokenGateway, agreements AgreementFactory, cfg Config, log interfaces.ILogger) *ContractManager {
	if cfg.AllowanceTimeout == 0 {
		cfg.AllowanceTimeout = 30 * time.Second
	}
	if cfg.AllowancePollInterval == 0 {
		cfg.AllowancePollInterval = time.Second
	}
	return &ContractManager{
		store:      store,
		relay:      relay,
		tx:         tx,
		token:      token,
		agreements: agreements,
		cfg:        cfg,
		log:        log,
	}
}

// Create validates the form, stores the contract in the backend and asks the
// relay to deploy the agreement. The stored amount is always micro-units
// tagged "microUSDC"; decimal strings never leave this process.
func (m *ContractManager) Create(ctx context.Context, form escrow.CreateForm, buyerAddress string, now time.Time) (*escrow.PendingContract, error) {
	micro, err := form.Validate(now)
	if err != nil {
		return nil, err
	}

	pending, err := m.store.Create(ctx, backend.CreateContractRequest{
		BuyerEmail:    form.BuyerEmail,
		SellerAddress: form.SellerAddress,
		Amount:        micro,
		Currency:      currency.TagMicroUSDC,
		Description:   form.Description,
		ExpiresAt:     form.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}

	deployed, err := m.relay.CreateContract(ctx, backend.RelayCreateContractRequest{
		ContractID:    pending.ID,
		BuyerAddress:  buyerAddress,
		SellerAddress: form.SellerAddress,
		Amount:        micro,
		ExpiresAt:     form.ExpiresAt.Unix(),
	})
	if err != nil {
		return nil, err
	}

	m.log.Infof("contract %s created, agreement deploying at %s (tx %s)", pending.ID, deployed.ContractAddress, deployed.TxHash)
	return pending, nil
}

// List returns the wallet's contracts filtered and sorted for the dashboard.
// Statuses are recomputed against the local clock so freshly expired
// contracts display correctly before the backend catches up.
func (m *ContractManager) List(ctx context.Context, filter escrow.Filter, sortBy escrow.SortBy, desc bool, now time.Time) ([]escrow.Contract, error) {
	all, err := m.store.ListByWallet(ctx, filter.Wallet)
	if err != nil {
		return nil, err
	}

	filtered := escrow.FilterContracts(all, filter, now)
	escrow.SortContracts(filtered, sortBy, desc)
	return filtered, nil
}

func (m *ContractManager) Get(ctx context.Context, id string) (*escrow.Contract, error) {
	return m.store.GetByID(ctx, id)
}

func (m *ContractManager) agreementFor(contract *escrow.Contract) (AgreementGateway, error) {
	if contract.ContractAddress == "" {
		return nil, ErrNotDeployed
	}
	return m.agreements(common.HexToAddress(contract.ContractAddress))
}

// NormalizeRefundPercent rounds to the nearest whole percent and clamps to
// the 0-100 range the resolution vote accepts.
func NormalizeRefundPercent(percent float64) int {
	rounded := int(math.Round(percent))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
