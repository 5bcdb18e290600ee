package gas

import (
	"errors"
	"fmt"
	"math/big"
)

var ErrCostLimit = errors.New("transaction cost exceeds configured maximum")

// CostLimitError carries the full numeric breakdown so a user or operator
// can diagnose the rejection without reading logs.
type CostLimitError struct {
	GasLimit     uint64
	GasPriceWei  *big.Int
	CostWei      *big.Int
	MaxCostWei   *big.Int
	MaxPriceGwei int64
}

func (e *CostLimitError) Error() string {
	return fmt.Sprintf(
		"%s: gas limit %d, gas price %s wei (%.4f gwei), total cost %s wei (%.8f ETH), configured max cost %s wei (%.8f ETH), configured max gas price %d gwei",
		ErrCostLimit.Error(),
		e.GasLimit,
		e.GasPriceWei.String(), WeiToGwei(e.GasPriceWei),
		e.CostWei.String(), WeiToEth(e.CostWei),
		e.MaxCostWei.String(), WeiToEth(e.MaxCostWei),
		e.MaxPriceGwei,
	)
}

func (e *CostLimitError) Unwrap() error {
	return ErrCostLimit
}

// Cost is gasLimit x effective gas price in wei.
func Cost(gasLimit uint64, plan *FeePlan) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), plan.EffectiveGasPrice())
}

// CheckCost refuses any transaction whose total cost exceeds the configured
// ceiling. It must run before signing, never after.
func CheckCost(gasLimit uint64, plan *FeePlan, maxCostWei *big.Int, maxPriceGwei int64) (*big.Int, error) {
	cost := Cost(gasLimit, plan)
	if maxCostWei != nil && maxCostWei.Sign() > 0 && cost.Cmp(maxCostWei) > 0 {
		return nil, &CostLimitError{
			GasLimit:     gasLimit,
			GasPriceWei:  plan.EffectiveGasPrice(),
			CostWei:      cost,
			MaxCostWei:   maxCostWei,
			MaxPriceGwei: maxPriceGwei,
		}
	}
	return cost, nil
}
