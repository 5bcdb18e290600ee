package contractmanager

import (
	"context"

	"github.com/escrowhq/escrow-gateway/internal/escrow"
	"github.com/escrowhq/escrow-gateway/internal/repositories/backend"
	"github.com/escrowhq/escrow-gateway/internal/txrelay"
	"github.com/ethereum/go-ethereum/common"
)

// RaiseDispute flags the agreement on chain, then records the raising
// party's first entry in the backend. The on-chain transaction is the source
// of truth and must be mined before anything is stored.
func (m *ContractManager) RaiseDispute(ctx context.Context, contractID, party, reason string, refundPercent float64) (common.Hash, error) {
	contract, err := m.store.GetByID(ctx, contractID)
	if err != nil {
		return common.Hash{}, err
	}
	agreement, err := m.agreementFor(contract)
	if err != nil {
		return common.Hash{}, err
	}

	ok, err := agreement.CanDispute(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	if !ok {
		return common.Hash{}, ErrDisputeNotAllowed
	}

	data, err := agreement.RaiseDisputeCalldata()
	if err != nil {
		return common.Hash{}, err
	}

	receipt, err := m.tx.SubmitAndWait(ctx, txrelay.KindDispute, txrelay.CallRequest{
		To:   agreement.Address(),
		Data: data,
	}, m.cfg.Sponsored)
	if err != nil {
		return common.Hash{}, err
	}

	if err := m.relay.RaiseDispute(ctx, contractID, party); err != nil {
		return common.Hash{}, err
	}

	err = m.store.SubmitDisputeEntry(ctx, contractID, backend.SubmitDisputeEntryRequest{
		Party:         party,
		Reason:        reason,
		RefundPercent: NormalizeRefundPercent(refundPercent),
	})
	if err != nil {
		return common.Hash{}, err
	}

	return receipt.TxHash, nil
}

// SubmitDisputeEntry records a party's position. When the submitted refund
// percentage matches the counterparty's latest entry the dispute is settled:
// the resolution vote is submitted and mined on chain first, and the backend
// entry is written only after that confirmation. Reversing the order could
// record an agreement that never executed.
func (m *ContractManager) SubmitDisputeEntry(ctx context.Context, contractID, party, reason string, refundPercent float64) (resolved bool, err error) {
	percent := NormalizeRefundPercent(refundPercent)

	contract, err := m.store.GetByID(ctx, contractID)
	if err != nil {
		return false, err
	}

	counterparty := escrow.LatestCounterpartyEntry(contract.DisputeEntries, party)
	if counterparty != nil && counterparty.RefundPercent == percent {
		agreement, err := m.agreementFor(contract)
		if err != nil {
			return false, err
		}

		data, err := agreement.SubmitResolutionVoteCalldata(int64(percent))
		if err != nil {
			return false, err
		}

		_, err = m.tx.SubmitAndWait(ctx, txrelay.KindVote, txrelay.CallRequest{
			To:   agreement.Address(),
			Data: data,
		}, m.cfg.Sponsored)
		if err != nil {
			return false, err
		}
		resolved = true
	}

	err = m.store.SubmitDisputeEntry(ctx, contractID, backend.SubmitDisputeEntryRequest{
		Party:         party,
		Reason:        reason,
		RefundPercent: percent,
	})
	if err != nil {
		return resolved, err
	}

	return resolved, nil
}
