package blockchain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type EventMapper func(types.Log) (interface{}, error)

type EventFactory func(name string) interface{}

type FundsDepositedEvent struct {
	Buyer  common.Address `abi:"buyer"`
	Amount *big.Int       `abi:"amount"`
}

type DisputeRaisedEvent struct {
	Party common.Address `abi:"party"`
}

type DisputeResolvedEvent struct {
	BuyerRefundPercent *big.Int `abi:"buyerRefundPercent"`
}

type FundsClaimedEvent struct {
	Seller common.Address `abi:"seller"`
	Amount *big.Int       `abi:"amount"`
}

func escrowEventFactory(name string) interface{} {
	switch name {
	case "FundsDeposited":
		return new(FundsDepositedEvent)
	case "DisputeRaised":
		return new(DisputeRaisedEvent)
	case "DisputeResolved":
		return new(DisputeResolvedEvent)
	case "FundsClaimed":
		return new(FundsClaimedEvent)
	default:
		return nil
	}
}

// CreateEventMapper decodes a raw log into the typed event the factory
// provides for its signature topic.
func CreateEventMapper(factory EventFactory, contractABI abi.ABI) EventMapper {
	return func(log types.Log) (interface{}, error) {
		if len(log.Topics) == 0 {
			return nil, fmt.Errorf("log without topics: tx %s", log.TxHash.Hex())
		}

		event, err := contractABI.EventByID(log.Topics[0])
		if err != nil {
			return nil, err
		}

		target := factory(event.Name)
		if target == nil {
			return nil, fmt.Errorf("unmapped event %q", event.Name)
		}

		if len(log.Data) > 0 {
			if err := contractABI.UnpackIntoInterface(target, event.Name, log.Data); err != nil {
				return nil, err
			}
		}

		var indexed abi.Arguments
		for _, arg := range event.Inputs {
			if arg.Indexed {
				indexed = append(indexed, arg)
			}
		}
		if len(indexed) > 0 {
			if err := abi.ParseTopics(target, indexed, log.Topics[1:]); err != nil {
				return nil, err
			}
		}

		return target, nil
	}
}
