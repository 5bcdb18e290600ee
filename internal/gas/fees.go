package gas

import "math/big"

type FeeModel int

const (
	FeeModelLegacy FeeModel = iota
	FeeModelDynamic
)

func (m FeeModel) String() string {
	if m == FeeModelDynamic {
		return "eip-1559"
	}
	return "legacy"
}

// FeePlan is resolved once per transaction and reused for both cost
// estimation and signing, so the two can never disagree on the fee model.
type FeePlan struct {
	Model                FeeModel
	GasPrice             *big.Int // legacy only
	MaxFeePerGas         *big.Int // dynamic only
	MaxPriorityFeePerGas *big.Int // dynamic only
}

// EffectiveGasPrice is the per-unit price used for the cost ceiling check:
// the single price for legacy transactions, the fee cap for dynamic ones.
func (p *FeePlan) EffectiveGasPrice() *big.Int {
	if p.Model == FeeModelDynamic {
		return p.MaxFeePerGas
	}
	return p.GasPrice
}
