package blockchain

import (
	"context"
	"math/big"
	"time"

	"github.com/escrowhq/escrow-gateway/internal/interfaces"
	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/ethereum/go-ethereum/common"
)

type LogWatcher interface {
	Watch(ctx context.Context, contractAddr common.Address, mapper EventMapper, fromBlock *big.Int) (*lib.Subscription, error)
}

// NewLogWatcher picks websocket subscriptions when the node connection
// supports them, polling otherwise.
func NewLogWatcher(client EthereumClient, forcePolling bool, maxReconnects int, pollingInterval time.Duration, log interfaces.ILogger) LogWatcher {
	if client.SupportsSubscriptions() && !forcePolling {
		return NewLogWatcherSubscription(client, maxReconnects, log)
	}
	return NewLogWatcherPolling(client, pollingInterval, maxReconnects, log)
}
