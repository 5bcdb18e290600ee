package gas

import (
	"bytes"
	"context"
	"math/big"

	"github.com/escrowhq/escrow-gateway/internal/interfaces"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	selectorApprove = crypto.Keccak256([]byte("approve(address,uint256)"))[:4]
	selectorDeposit = crypto.Keccak256([]byte("depositFunds()"))[:4]
)

type RawCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// FallbackLimits are static gas limits keyed by the function being called,
// used when the node refuses or fails to estimate.
type FallbackLimits struct {
	Approve uint64
	Deposit uint64
	Default uint64
}

type Estimator struct {
	client   RawCaller
	fallback FallbackLimits
	log      interfaces.ILogger
}

func NewEstimator(client RawCaller, fallback FallbackLimits, log interfaces.ILogger) *Estimator {
	return &Estimator{client: client, fallback: fallback, log: log}
}

// GasLimit estimates via a direct eth_estimateGas JSON-RPC call, bypassing
// wallet-library estimation which pre-validates with stale assumptions.
// On failure it falls back to the configured static limit for the detected
// function selector.
func (e *Estimator) GasLimit(ctx context.Context, from, to common.Address, value *big.Int, data []byte) uint64 {
	call := map[string]interface{}{
		"from": from,
		"to":   to,
	}
	if value != nil && value.Sign() > 0 {
		call["value"] = (*hexutil.Big)(value)
	}
	if len(data) > 0 {
		call["data"] = hexutil.Bytes(data)
	}

	var out hexutil.Uint64
	err := e.client.CallContext(ctx, &out, "eth_estimateGas", call)
	if err == nil && out > 0 {
		return uint64(out)
	}

	limit := e.fallbackFor(data)
	e.log.Warnf("eth_estimateGas failed, using static fallback %d: %v", limit, err)
	return limit
}

func (e *Estimator) fallbackFor(data []byte) uint64 {
	if len(data) >= 4 {
		switch {
		case bytes.Equal(data[:4], selectorApprove):
			return e.fallback.Approve
		case bytes.Equal(data[:4], selectorDeposit):
			return e.fallback.Deposit
		}
	}
	return e.fallback.Default
}
