package gas

import "math/big"

var (
	weiPerGwei = big.NewInt(1_000_000_000)
	weiPerEth  = new(big.Int).Mul(weiPerGwei, weiPerGwei)
)

func GweiToWei(gwei int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(gwei), weiPerGwei)
}

// WeiToGwei is lossy, used for diagnostics only
func WeiToGwei(wei *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), new(big.Float).SetInt(weiPerGwei)).Float64()
	return f
}

// WeiToEth is lossy, used for diagnostics only
func WeiToEth(wei *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), new(big.Float).SetInt(weiPerEth)).Float64()
	return f
}
