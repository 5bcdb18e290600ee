package txrelay

import (
	"context"
	"errors"

	"github.com/escrowhq/escrow-gateway/internal/interfaces"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Service is the submission pipeline: quote, optional sponsorship, sign,
// submit, record. Sponsorship is skipped when no sponsor is configured.
type Service struct {
	assembler *Assembler
	sponsor   *Sponsor
	history   *History
	log       interfaces.ILogger
}

func NewService(assembler *Assembler, sponsor *Sponsor, history *History, log interfaces.ILogger) *Service {
	return &Service{assembler: assembler, sponsor: sponsor, history: history, log: log}
}

func (s *Service) Address() common.Address {
	return s.assembler.Address()
}

// Quote exposes the preflight estimate without submitting anything.
func (s *Service) Quote(ctx context.Context, req CallRequest) (*Quote, error) {
	return s.assembler.Quote(ctx, req)
}

// Submit runs the full pipeline. The cost ceiling is checked inside Quote,
// before sponsorship and before signing.
func (s *Service) Submit(ctx context.Context, kind TxKind, req CallRequest, sponsored bool) (common.Hash, error) {
	quote, err := s.assembler.Quote(ctx, req)
	if err != nil {
		return common.Hash{}, err
	}

	if sponsored && s.sponsor != nil {
		if err := s.sponsor.EnsureFunded(ctx, s.assembler.Address(), quote.CostWei); err != nil {
			return common.Hash{}, err
		}
	}

	hash, err := s.assembler.SendQuoted(ctx, req, quote)
	if err != nil {
		return common.Hash{}, err
	}

	s.history.Add(hash, kind, quote.CostWei)
	return hash, nil
}

// SubmitAndWait submits and blocks until the receipt lands, recording the
// terminal status in the history ring.
func (s *Service) SubmitAndWait(ctx context.Context, kind TxKind, req CallRequest, sponsored bool) (*types.Receipt, error) {
	hash, err := s.Submit(ctx, kind, req, sponsored)
	if err != nil {
		return nil, err
	}
	return s.AwaitReceipt(ctx, hash)
}

func (s *Service) AwaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := s.assembler.WaitMined(ctx, hash)
	switch {
	case errors.Is(err, ErrTxReverted):
		s.history.SetStatus(hash, TxStatusReverted)
	case errors.Is(err, ErrConfirmationTimeout):
		s.history.SetStatus(hash, TxStatusTimedOut)
	case err == nil:
		s.history.SetStatus(hash, TxStatusConfirmed)
	}
	return receipt, err
}

func (s *Service) History() []HistoryEntry {
	return s.history.Entries()
}
