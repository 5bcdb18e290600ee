package txrelay

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/escrowhq/escrow-gateway/internal/interfaces"
	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/ethereum/go-ethereum/common"
)

var ErrFunding = errors.New("gas sponsorship failed")

// fundingBufferPercent pads the requested top-up so a small price move
// between funding and submission does not strand the transaction.
const fundingBufferPercent = 20

// Funder requests a native-balance top-up from the sponsoring backend.
// backend.RelayClient satisfies it.
type Funder interface {
	FundWallet(ctx context.Context, addr common.Address, amountWei *big.Int) error
}

// BalanceReader reads the signer's native balance; blockchain.EthereumClient
// satisfies it.
type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

type SponsorConfig struct {
	FundTimeout         time.Duration
	BalancePollInterval time.Duration
}

// Sponsor tops up the signer's balance before gas-bearing transactions so
// the user never has to hold native currency themselves.
type Sponsor struct {
	funder  Funder
	balance BalanceReader
	cfg     SponsorConfig
	log     interfaces.ILogger
}

func NewSponsor(funder Funder, balance BalanceReader, cfg SponsorConfig, log interfaces.ILogger) *Sponsor {
	if cfg.FundTimeout == 0 {
		cfg.FundTimeout = 60 * time.Second
	}
	if cfg.BalancePollInterval == 0 {
		cfg.BalancePollInterval = 2 * time.Second
	}
	return &Sponsor{funder: funder, balance: balance, cfg: cfg, log: log}
}

// EnsureFunded guarantees addr holds at least costWei before returning.
// The top-up request is padded by fundingBufferPercent, then the balance is
// polled until the funding transaction lands or the timeout elapses.
func (s *Sponsor) EnsureFunded(ctx context.Context, addr common.Address, costWei *big.Int) error {
	current, err := s.balance.BalanceAt(ctx, addr, nil)
	if err != nil {
		return lib.WrapError(ErrFunding, err)
	}
	if current.Cmp(costWei) >= 0 {
		return nil
	}

	padded := new(big.Int).Mul(costWei, big.NewInt(100+fundingBufferPercent))
	padded.Div(padded, big.NewInt(100))

	s.log.Infof("balance %s wei below required %s wei, requesting %s wei top-up for %s",
		current.String(), costWei.String(), padded.String(), addr.Hex())

	if err := s.funder.FundWallet(ctx, addr, padded); err != nil {
		return lib.WrapError(ErrFunding, err)
	}

	err = lib.Poll(ctx, s.cfg.FundTimeout, func() error {
		balance, err := s.balance.BalanceAt(ctx, addr, nil)
		if err != nil {
			return err
		}
		if balance.Cmp(costWei) < 0 {
			return fmt.Errorf("balance %s wei still below %s wei", balance.String(), costWei.String())
		}
		return nil
	}, s.cfg.BalancePollInterval)
	if err != nil {
		return lib.WrapError(ErrFunding, err)
	}

	return nil
}
