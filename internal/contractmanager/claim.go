package contractmanager

import (
	"context"

	"github.com/escrowhq/escrow-gateway/internal/txrelay"
	"github.com/ethereum/go-ethereum/common"
)

// Claim releases the escrowed funds to the claimant. The canClaim view is
// checked first so an ineligible claim fails before any gas is spent.
func (m *ContractManager) Claim(ctx context.Context, contractID string) (common.Hash, error) {
	contract, err := m.store.GetByID(ctx, contractID)
	if err != nil {
		return common.Hash{}, err
	}
	agreement, err := m.agreementFor(contract)
	if err != nil {
		return common.Hash{}, err
	}

	ok, err := agreement.CanClaim(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	if !ok {
		return common.Hash{}, ErrClaimNotAllowed
	}

	data, err := agreement.ClaimFundsCalldata()
	if err != nil {
		return common.Hash{}, err
	}

	receipt, err := m.tx.SubmitAndWait(ctx, txrelay.KindClaim, txrelay.CallRequest{
		To:   agreement.Address(),
		Data: data,
	}, m.cfg.Sponsored)
	if err != nil {
		return common.Hash{}, err
	}

	return receipt.TxHash, nil
}
