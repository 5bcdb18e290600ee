package contractmanager

import (
	"context"

	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/escrowhq/escrow-gateway/internal/repositories/blockchain"
)

// WatchAgreement follows the agreement's on-chain events until the context
// is cancelled, so counterparty actions (deposits, disputes, claims) show up
// in the logs without polling the backend. The returned task is already
// started; callers stop it with Stop.
func (m *ContractManager) WatchAgreement(ctx context.Context, contractID string) (*lib.Task, error) {
	contract, err := m.store.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	agreement, err := m.agreementFor(contract)
	if err != nil {
		return nil, err
	}

	task := lib.NewTaskFunc(func(ctx context.Context) error {
		sub, err := agreement.WatchEvents(ctx, nil)
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case err := <-sub.Err():
				return err
			case event := <-sub.Events():
				m.logEvent(contractID, event)
			}
		}
	}, "watch-"+contractID)

	task.Start(ctx)
	return task, nil
}

func (m *ContractManager) logEvent(contractID string, event interface{}) {
	switch e := event.(type) {
	case *blockchain.FundsDepositedEvent:
		m.log.Infof("contract %s funded by %s, amount %d", contractID, e.Buyer.Hex(), e.Amount)
	case *blockchain.DisputeRaisedEvent:
		m.log.Warnf("contract %s disputed by %s", contractID, e.Party.Hex())
	case *blockchain.DisputeResolvedEvent:
		m.log.Infof("contract %s dispute resolved, buyer refund %d%%", contractID, e.BuyerRefundPercent)
	case *blockchain.FundsClaimedEvent:
		m.log.Infof("contract %s claimed by %s, amount %d", contractID, e.Seller.Hex(), e.Amount)
	default:
		m.log.Debugf("contract %s unrecognized event %T", contractID, event)
	}
}
