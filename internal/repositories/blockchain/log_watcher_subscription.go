package blockchain

import (
	"context"
	"math/big"
	"time"

	"github.com/escrowhq/escrow-gateway/internal/interfaces"
	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const reconnectTimeout = 2 * time.Second

type LogWatcherSubscription struct {
	// config
	maxReconnects int

	// deps
	client EthereumClient
	log    interfaces.ILogger
}

func NewLogWatcherSubscription(client EthereumClient, maxReconnects int, log interfaces.ILogger) *LogWatcherSubscription {
	return &LogWatcherSubscription{
		client:        client,
		maxReconnects: maxReconnects,
		log:           log,
	}
}

func (w *LogWatcherSubscription) Watch(ctx context.Context, contractAddr common.Address, mapper EventMapper, fromBlock *big.Int) (*lib.Subscription, error) {
	query := ethereum.FilterQuery{
		Addresses: []common.Address{contractAddr},
		FromBlock: fromBlock,
	}

	sink := make(chan interface{})
	return lib.NewSubscription(func(quit <-chan struct{}) error {
		defer close(sink)

		var lastErr error
		for attempts := 0; attempts < w.maxReconnects; attempts++ {
			in := make(chan types.Log)
			sub, err := w.client.SubscribeFilterLogs(ctx, query, in)
			if err != nil {
				lastErr = err
				select {
				case <-quit:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(reconnectTimeout):
				}
				continue
			}
			if attempts > 0 {
				w.log.Warnf("log subscription reconnected after error: %s", lastErr)
			}

			lastErr = w.consume(ctx, quit, sub, in, mapper, sink)
			sub.Unsubscribe()
			if lastErr == nil {
				return nil
			}
		}

		return lastErr
	}, sink), nil
}

func (w *LogWatcherSubscription) consume(ctx context.Context, quit <-chan struct{}, sub ethereum.Subscription, in <-chan types.Log, mapper EventMapper, sink chan<- interface{}) error {
	for {
		select {
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			return err
		case log := <-in:
			if log.Removed {
				continue
			}
			event, err := mapper(log)
			if err != nil {
				w.log.Errorf("cannot map event: %s", err)
				continue
			}
			select {
			case <-quit:
				return nil
			case <-ctx.Done():
				return nil
			case sink <- event:
			}
		}
	}
}
