package gas

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckCostPasses(t *testing.T) {
	plan := &FeePlan{Model: FeeModelLegacy, GasPrice: GweiToWei(10)}
	cost, err := CheckCost(100000, plan, GweiToWei(10_000_000), 100)
	require.NoError(t, err)
	require.Equal(t, new(big.Int).Mul(big.NewInt(100000), GweiToWei(10)), cost)
}

func TestCheckCostRejectsOverLimit(t *testing.T) {
	plan := &FeePlan{Model: FeeModelLegacy, GasPrice: GweiToWei(100)}
	_, err := CheckCost(1_000_000, plan, GweiToWei(1000), 100)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCostLimit))

	var costErr *CostLimitError
	require.True(t, errors.As(err, &costErr))
	require.Equal(t, uint64(1_000_000), costErr.GasLimit)
	require.Equal(t, GweiToWei(100), costErr.GasPriceWei)
	require.Equal(t, GweiToWei(1000), costErr.MaxCostWei)
	require.Equal(t, new(big.Int).Mul(big.NewInt(1_000_000), GweiToWei(100)), costErr.CostWei)

	// the message carries the full breakdown
	require.Contains(t, err.Error(), "gas limit 1000000")
	require.Contains(t, err.Error(), "max gas price 100 gwei")
}

func TestCheckCostUsesFeeCapForDynamic(t *testing.T) {
	plan := &FeePlan{Model: FeeModelDynamic, MaxFeePerGas: GweiToWei(50), MaxPriorityFeePerGas: GweiToWei(2)}
	cost, err := CheckCost(21000, plan, nil, 0)
	require.NoError(t, err)
	require.Equal(t, new(big.Int).Mul(big.NewInt(21000), GweiToWei(50)), cost)
}
