package gas

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
)

type rawCallerMock struct {
	estimate uint64
	err      error
	method   string
}

func (m *rawCallerMock) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	m.method = method
	if m.err != nil {
		return m.err
	}
	*(result.(*hexutil.Uint64)) = hexutil.Uint64(m.estimate)
	return nil
}

var testFallbacks = FallbackLimits{Approve: 60000, Deposit: 150000, Default: 100000}

func TestGasLimitUsesDirectRPCEstimate(t *testing.T) {
	client := &rawCallerMock{estimate: 42000}
	est := NewEstimator(client, testFallbacks, lib.NewTestLogger())

	limit := est.GasLimit(context.Background(), common.Address{}, common.Address{1}, big.NewInt(0), nil)
	require.Equal(t, uint64(42000), limit)
	require.Equal(t, "eth_estimateGas", client.method)
}

func TestGasLimitFallbackBySelector(t *testing.T) {
	client := &rawCallerMock{err: errors.New("execution reverted")}
	est := NewEstimator(client, testFallbacks, lib.NewTestLogger())

	approveData := append(append([]byte{}, selectorApprove...), make([]byte, 64)...)
	require.Equal(t, uint64(60000), est.GasLimit(context.Background(), common.Address{}, common.Address{1}, nil, approveData))

	depositData := append([]byte{}, selectorDeposit...)
	require.Equal(t, uint64(150000), est.GasLimit(context.Background(), common.Address{}, common.Address{1}, nil, depositData))

	require.Equal(t, uint64(100000), est.GasLimit(context.Background(), common.Address{}, common.Address{1}, nil, []byte{0xde, 0xad, 0xbe, 0xef}))
	require.Equal(t, uint64(100000), est.GasLimit(context.Background(), common.Address{}, common.Address{1}, nil, nil))
}
