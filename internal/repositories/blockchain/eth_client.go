package blockchain

import (
	"context"
	"math/big"
	"net/url"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// EthereumClient is the node surface the gateways and the transaction
// relay depend on. *EthClient implements it; tests substitute mocks.
type EthereumClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error)
	PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)

	// CallContext exposes raw JSON-RPC for methods the typed client either
	// lacks or wraps with validation we need to bypass (eth_estimateGas,
	// eth_sendRawTransaction)
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
	SupportsSubscriptions() bool
}

type EthClient struct {
	// config
	url string

	// state
	*ethclient.Client
	rpc                   *rpc.Client
	supportsSubscriptions bool
}

func DialContext(ctx context.Context, urlString string) (*EthClient, error) {
	u, err := url.Parse(urlString)
	if err != nil {
		return nil, err
	}

	isWS := u.Scheme == "ws" || u.Scheme == "wss"

	rpcClient, err := rpc.DialContext(ctx, urlString)
	if err != nil {
		return nil, err
	}

	return &EthClient{
		Client:                ethclient.NewClient(rpcClient),
		rpc:                   rpcClient,
		url:                   urlString,
		supportsSubscriptions: isWS,
	}, nil
}

func (c *EthClient) SupportsSubscriptions() bool {
	return c.supportsSubscriptions
}

func (c *EthClient) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	return c.rpc.CallContext(ctx, result, method, args...)
}
