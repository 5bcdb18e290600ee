package blockchain

import (
	"context"
	"math/big"
	"strings"

	"github.com/escrowhq/escrow-gateway/internal/interfaces"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// ERC20Gateway reads stablecoin state and packs calldata for token writes.
// Writes go through the transaction relay, never through bound.Transact.
type ERC20Gateway struct {
	// config
	address common.Address

	// deps
	abi    abi.ABI
	bound  *bind.BoundContract
	client EthereumClient
	log    interfaces.ILogger
}

func NewERC20Gateway(address common.Address, client EthereumClient, log interfaces.ILogger) (*ERC20Gateway, error) {
	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, err
	}

	return &ERC20Gateway{
		address: address,
		abi:     parsedABI,
		bound:   bind.NewBoundContract(address, parsedABI, client, client, client),
		client:  client,
		log:     log,
	}, nil
}

func (g *ERC20Gateway) Address() common.Address {
	return g.address
}

func (g *ERC20Gateway) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	var out []interface{}
	err := g.bound.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (g *ERC20Gateway) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	var out []interface{}
	err := g.bound.Call(&bind.CallOpts{Context: ctx}, &out, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (g *ERC20Gateway) Decimals(ctx context.Context) (uint8, error) {
	var out []interface{}
	err := g.bound.Call(&bind.CallOpts{Context: ctx}, &out, "decimals")
	if err != nil {
		return 0, err
	}
	return out[0].(uint8), nil
}

func (g *ERC20Gateway) ApproveCalldata(spender common.Address, amount *big.Int) ([]byte, error) {
	return g.abi.Pack("approve", spender, amount)
}

func (g *ERC20Gateway) TransferCalldata(to common.Address, amount *big.Int) ([]byte, error) {
	return g.abi.Pack("transfer", to, amount)
}
