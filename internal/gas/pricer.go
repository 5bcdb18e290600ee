package gas

import (
	"context"
	"math/big"

	"github.com/escrowhq/escrow-gateway/internal/interfaces"
	"github.com/ethereum/go-ethereum/core/types"
)

type FeeReader interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

type PricerConfig struct {
	// TrustedPriceGwei is the network-specific reliable gas price. When set it
	// takes precedence over whatever the provider reports, because provider
	// prices were observed mis-scaled (gwei where wei was expected).
	TrustedPriceGwei int64
	MinPriceGwei     int64
	MaxPriceGwei     int64
}

type Pricer struct {
	cfg    PricerConfig
	client FeeReader
	log    interfaces.ILogger
}

func NewPricer(cfg PricerConfig, client FeeReader, log interfaces.ILogger) *Pricer {
	return &Pricer{cfg: cfg, client: client, log: log}
}

// ResolvePlan picks the gas price and fee model for a transaction.
// Resolution order: explicit caller-supplied price, configured trusted price,
// provider-reported price with a mis-scale sanity check, configured floor.
// The configured hard cap is enforced last on whatever was chosen.
func (p *Pricer) ResolvePlan(ctx context.Context, explicitWei *big.Int) (*FeePlan, error) {
	price := p.resolvePrice(ctx, explicitWei)

	maxWei := GweiToWei(p.cfg.MaxPriceGwei)
	if p.cfg.MaxPriceGwei > 0 && price.Cmp(maxWei) > 0 {
		p.log.Warnf("gas price %.4f gwei exceeds configured cap %d gwei, clamping", WeiToGwei(price), p.cfg.MaxPriceGwei)
		price = maxWei
	}

	tip, tipErr := p.client.SuggestGasTipCap(ctx)
	header, headerErr := p.client.HeaderByNumber(ctx, nil)

	// EIP-1559 only when the provider exposes both a base fee and a tip,
	// otherwise fall back to a legacy single-price transaction
	if tipErr == nil && headerErr == nil && header.BaseFee != nil && tip != nil {
		if tip.Cmp(price) > 0 {
			tip = new(big.Int).Set(price)
		}
		return &FeePlan{
			Model:                FeeModelDynamic,
			MaxFeePerGas:         price,
			MaxPriorityFeePerGas: tip,
		}, nil
	}

	return &FeePlan{
		Model:    FeeModelLegacy,
		GasPrice: price,
	}, nil
}

func (p *Pricer) resolvePrice(ctx context.Context, explicitWei *big.Int) *big.Int {
	if explicitWei != nil && explicitWei.Sign() > 0 {
		return new(big.Int).Set(explicitWei)
	}

	if p.cfg.TrustedPriceGwei > 0 {
		return GweiToWei(p.cfg.TrustedPriceGwei)
	}

	minWei := GweiToWei(p.cfg.MinPriceGwei)

	reported, err := p.client.SuggestGasPrice(ctx)
	if err != nil {
		p.log.Warnf("provider gas price unavailable, using configured floor %d gwei: %s", p.cfg.MinPriceGwei, err)
		return minWei
	}

	// some providers report a gwei figure where wei is expected; a "wei" value
	// below the configured minimum is implausible and gets rescaled
	if p.cfg.MinPriceGwei > 0 && reported.Cmp(minWei) < 0 {
		rescaled := new(big.Int).Mul(reported, weiPerGwei)
		p.log.Warnf("provider gas price %s wei is below the %d gwei minimum, treating it as gwei and rescaling to %s wei",
			reported.String(), p.cfg.MinPriceGwei, rescaled.String())
		reported = rescaled
	}

	if reported.Cmp(minWei) < 0 {
		p.log.Warnf("provider gas price %.4f gwei still below floor, using %d gwei", WeiToGwei(reported), p.cfg.MinPriceGwei)
		return minWei
	}

	return reported
}
