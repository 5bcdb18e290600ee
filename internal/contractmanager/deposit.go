package contractmanager

import (
	"context"
	"fmt"
	"math/big"

	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/escrowhq/escrow-gateway/internal/txrelay"
	"github.com/ethereum/go-ethereum/common"
)

type DepositStage string

const (
	DepositStageCreated    DepositStage = "created"
	DepositStageApproving  DepositStage = "approving"
	DepositStageApproved   DepositStage = "approved"
	DepositStageDepositing DepositStage = "depositing"
	DepositStageDeposited  DepositStage = "deposited"
	DepositStageFailed     DepositStage = "failed"
)

// DepositProgress receives stage transitions as the deposit advances.
type DepositProgress func(stage DepositStage)

// Deposit runs the two-transaction funding flow: an ERC-20 approval when the
// current allowance is short, then the escrow deposit itself. The approval is
// confirmed by polling the allowance, not by waiting a fixed delay, because
// read endpoints can lag the mined state. The backend is notified only after
// the deposit transaction is mined.
func (m *ContractManager) Deposit(ctx context.Context, contractID string, progress DepositProgress) (common.Hash, error) {
	report := func(stage DepositStage) {
		if progress != nil {
			progress(stage)
		}
	}
	fail := func(err error) (common.Hash, error) {
		report(DepositStageFailed)
		return common.Hash{}, err
	}

	report(DepositStageCreated)

	contract, err := m.store.GetByID(ctx, contractID)
	if err != nil {
		return fail(err)
	}
	agreement, err := m.agreementFor(contract)
	if err != nil {
		return fail(err)
	}

	ok, err := agreement.CanDeposit(ctx)
	if err != nil {
		return fail(err)
	}
	if !ok {
		return fail(ErrDepositNotAllowed)
	}

	amount := big.NewInt(contract.Amount)
	owner := m.tx.Address()

	allowance, err := m.token.Allowance(ctx, owner, agreement.Address())
	if err != nil {
		return fail(err)
	}

	if allowance.Cmp(amount) < 0 {
		report(DepositStageApproving)
		if err := m.approve(ctx, agreement.Address(), amount); err != nil {
			return fail(err)
		}
	}
	report(DepositStageApproved)

	report(DepositStageDepositing)
	data, err := agreement.DepositFundsCalldata()
	if err != nil {
		return fail(err)
	}

	receipt, err := m.tx.SubmitAndWait(ctx, txrelay.KindDeposit, txrelay.CallRequest{
		To:   agreement.Address(),
		Data: data,
	}, m.cfg.Sponsored)
	if err != nil {
		return fail(err)
	}
	report(DepositStageDeposited)

	if err := m.relay.NotifyDeposit(ctx, contractID, receipt.TxHash); err != nil {
		// the deposit is on chain; the backend will reconcile from events
		m.log.Warnf("deposit %s mined but backend notification failed: %s", receipt.TxHash.Hex(), err)
	}

	return receipt.TxHash, nil
}

func (m *ContractManager) approve(ctx context.Context, spender common.Address, amount *big.Int) error {
	data, err := m.token.ApproveCalldata(spender, amount)
	if err != nil {
		return err
	}

	_, err = m.tx.SubmitAndWait(ctx, txrelay.KindApprove, txrelay.CallRequest{
		To:   m.token.Address(),
		Data: data,
	}, m.cfg.Sponsored)
	if err != nil {
		return err
	}

	owner := m.tx.Address()
	return lib.Poll(ctx, m.cfg.AllowanceTimeout, func() error {
		allowance, err := m.token.Allowance(ctx, owner, spender)
		if err != nil {
			return err
		}
		if allowance.Cmp(amount) < 0 {
			return fmt.Errorf("allowance %s below required %s", allowance.String(), amount.String())
		}
		return nil
	}, m.cfg.AllowancePollInterval)
}
