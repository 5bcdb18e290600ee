package blockchain

import (
	"context"
	"math/big"
	"strings"

	"github.com/escrowhq/escrow-gateway/internal/interfaces"
	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// ContractInfo mirrors getContractInfo output.
type ContractInfo struct {
	Buyer     common.Address
	Seller    common.Address
	Amount    *big.Int // stablecoin micro-units
	ExpiresAt *big.Int // unix seconds
	Status    uint8
}

// EscrowGateway wraps a single deployed escrow agreement. Reads go through
// the bound contract, writes are packed into calldata for the relay.
type EscrowGateway struct {
	// config
	address common.Address

	// deps
	abi        abi.ABI
	bound      *bind.BoundContract
	client     EthereumClient
	logWatcher LogWatcher
	log        interfaces.ILogger
}

func NewEscrowGateway(address common.Address, client EthereumClient, logWatcher LogWatcher, log interfaces.ILogger) (*EscrowGateway, error) {
	parsedABI, err := abi.JSON(strings.NewReader(escrowABI))
	if err != nil {
		return nil, err
	}

	return &EscrowGateway{
		address:    address,
		abi:        parsedABI,
		bound:      bind.NewBoundContract(address, parsedABI, client, client, client),
		client:     client,
		logWatcher: logWatcher,
		log:        log,
	}, nil
}

func (g *EscrowGateway) Address() common.Address {
	return g.address
}

func (g *EscrowGateway) GetContractInfo(ctx context.Context) (*ContractInfo, error) {
	var out []interface{}
	err := g.bound.Call(&bind.CallOpts{Context: ctx}, &out, "getContractInfo")
	if err != nil {
		return nil, err
	}

	return &ContractInfo{
		Buyer:     out[0].(common.Address),
		Seller:    out[1].(common.Address),
		Amount:    out[2].(*big.Int),
		ExpiresAt: out[3].(*big.Int),
		Status:    out[4].(uint8),
	}, nil
}

func (g *EscrowGateway) IsExpired(ctx context.Context) (bool, error)  { return g.boolCall(ctx, "isExpired") }
func (g *EscrowGateway) IsFunded(ctx context.Context) (bool, error)   { return g.boolCall(ctx, "isFunded") }
func (g *EscrowGateway) IsDisputed(ctx context.Context) (bool, error) { return g.boolCall(ctx, "isDisputed") }
func (g *EscrowGateway) IsClaimed(ctx context.Context) (bool, error)  { return g.boolCall(ctx, "isClaimed") }
func (g *EscrowGateway) CanDeposit(ctx context.Context) (bool, error) { return g.boolCall(ctx, "canDeposit") }
func (g *EscrowGateway) CanClaim(ctx context.Context) (bool, error)   { return g.boolCall(ctx, "canClaim") }
func (g *EscrowGateway) CanDispute(ctx context.Context) (bool, error) { return g.boolCall(ctx, "canDispute") }

func (g *EscrowGateway) boolCall(ctx context.Context, method string) (bool, error) {
	var out []interface{}
	err := g.bound.Call(&bind.CallOpts{Context: ctx}, &out, method)
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

func (g *EscrowGateway) DepositFundsCalldata() ([]byte, error) {
	return g.abi.Pack("depositFunds")
}

func (g *EscrowGateway) RaiseDisputeCalldata() ([]byte, error) {
	return g.abi.Pack("raiseDispute")
}

func (g *EscrowGateway) ClaimFundsCalldata() ([]byte, error) {
	return g.abi.Pack("claimFunds")
}

func (g *EscrowGateway) SubmitResolutionVoteCalldata(buyerRefundPercent int64) ([]byte, error) {
	return g.abi.Pack("submitResolutionVote", big.NewInt(buyerRefundPercent))
}

// WatchEvents streams FundsDeposited/DisputeRaised/DisputeResolved/FundsClaimed
// emitted by this agreement.
func (g *EscrowGateway) WatchEvents(ctx context.Context, fromBlock *big.Int) (*lib.Subscription, error) {
	return g.logWatcher.Watch(ctx, g.address, CreateEventMapper(escrowEventFactory, g.abi), fromBlock)
}
