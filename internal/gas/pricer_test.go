package gas

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

type feeReaderMock struct {
	gasPrice *big.Int
	tipCap   *big.Int
	baseFee  *big.Int
	priceErr error
	tipErr   error
}

func (m *feeReaderMock) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return m.gasPrice, m.priceErr
}

func (m *feeReaderMock) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return m.tipCap, m.tipErr
}

func (m *feeReaderMock) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: m.baseFee}, nil
}

func legacyOnlyReader(gasPrice *big.Int) *feeReaderMock {
	return &feeReaderMock{gasPrice: gasPrice, tipErr: errors.New("method eth_maxPriorityFeePerGas not found")}
}

func TestResolvePlanExplicitPriceWins(t *testing.T) {
	client := legacyOnlyReader(GweiToWei(50))
	pricer := NewPricer(PricerConfig{TrustedPriceGwei: 30, MinPriceGwei: 1, MaxPriceGwei: 1000}, client, lib.NewTestLogger())

	plan, err := pricer.ResolvePlan(context.Background(), GweiToWei(77))
	require.NoError(t, err)
	require.Equal(t, FeeModelLegacy, plan.Model)
	require.Equal(t, GweiToWei(77), plan.GasPrice)
}

func TestResolvePlanTrustedPriceBeatsProvider(t *testing.T) {
	client := legacyOnlyReader(GweiToWei(500))
	pricer := NewPricer(PricerConfig{TrustedPriceGwei: 30, MinPriceGwei: 1, MaxPriceGwei: 1000}, client, lib.NewTestLogger())

	plan, err := pricer.ResolvePlan(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, GweiToWei(30), plan.EffectiveGasPrice())
}

func TestResolvePlanRescalesMisreportedGwei(t *testing.T) {
	// provider reports 25 where 25 gwei in wei is expected
	client := legacyOnlyReader(big.NewInt(25))
	pricer := NewPricer(PricerConfig{MinPriceGwei: 1, MaxPriceGwei: 1000}, client, lib.NewTestLogger())

	plan, err := pricer.ResolvePlan(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, GweiToWei(25), plan.GasPrice)
}

func TestResolvePlanFloorsImplausiblyLowPrice(t *testing.T) {
	// even rescaled the price stays below the floor
	client := legacyOnlyReader(big.NewInt(0))
	pricer := NewPricer(PricerConfig{MinPriceGwei: 2, MaxPriceGwei: 1000}, client, lib.NewTestLogger())

	plan, err := pricer.ResolvePlan(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, GweiToWei(2), plan.GasPrice)
}

func TestResolvePlanFloorsOnProviderError(t *testing.T) {
	client := &feeReaderMock{priceErr: errors.New("boom"), tipErr: errors.New("boom")}
	pricer := NewPricer(PricerConfig{MinPriceGwei: 3, MaxPriceGwei: 1000}, client, lib.NewTestLogger())

	plan, err := pricer.ResolvePlan(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, GweiToWei(3), plan.GasPrice)
}

func TestResolvePlanEnforcesHardCap(t *testing.T) {
	client := legacyOnlyReader(GweiToWei(50))
	pricer := NewPricer(PricerConfig{MinPriceGwei: 1, MaxPriceGwei: 100}, client, lib.NewTestLogger())

	plan, err := pricer.ResolvePlan(context.Background(), GweiToWei(5000))
	require.NoError(t, err)
	require.Equal(t, GweiToWei(100), plan.EffectiveGasPrice())
}

func TestResolvePlanDynamicWhenFeeDataComplete(t *testing.T) {
	client := &feeReaderMock{
		gasPrice: GweiToWei(40),
		tipCap:   GweiToWei(2),
		baseFee:  GweiToWei(30),
	}
	pricer := NewPricer(PricerConfig{MinPriceGwei: 1, MaxPriceGwei: 1000}, client, lib.NewTestLogger())

	plan, err := pricer.ResolvePlan(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, FeeModelDynamic, plan.Model)
	require.Equal(t, GweiToWei(40), plan.MaxFeePerGas)
	require.Equal(t, GweiToWei(2), plan.MaxPriorityFeePerGas)
	require.Nil(t, plan.GasPrice)
}

func TestResolvePlanTipNeverExceedsFeeCap(t *testing.T) {
	client := &feeReaderMock{
		gasPrice: GweiToWei(10),
		tipCap:   GweiToWei(500),
		baseFee:  GweiToWei(5),
	}
	pricer := NewPricer(PricerConfig{TrustedPriceGwei: 10, MinPriceGwei: 1, MaxPriceGwei: 1000}, client, lib.NewTestLogger())

	plan, err := pricer.ResolvePlan(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, FeeModelDynamic, plan.Model)
	require.True(t, plan.MaxPriorityFeePerGas.Cmp(plan.MaxFeePerGas) <= 0)
}
