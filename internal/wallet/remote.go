package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"

	"github.com/escrowhq/escrow-gateway/internal/interfaces"
	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// Provider is the EIP-1193 style request surface of an external wallet
// connection (browser extension bridge, walletconnect relay).
type Provider interface {
	Request(ctx context.Context, result interface{}, method string, params ...interface{}) error
}

type rpcProvider struct {
	client *rpc.Client
}

// NewRPCProvider connects to an external signer exposed over JSON-RPC
// (walletconnect bridge, frame, a hardware wallet daemon).
func NewRPCProvider(ctx context.Context, urlString string) (Provider, error) {
	client, err := rpc.DialContext(ctx, urlString)
	if err != nil {
		return nil, err
	}
	return &rpcProvider{client: client}, nil
}

func (p *rpcProvider) Request(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	return p.client.CallContext(ctx, result, method, params...)
}

// RemoteAccount asks the provider which account it signs for.
func RemoteAccount(ctx context.Context, provider Provider) (common.Address, error) {
	var accounts []common.Address
	if err := provider.Request(ctx, &accounts, "eth_accounts"); err != nil {
		return common.Address{}, err
	}
	if len(accounts) == 0 {
		return common.Address{}, errors.New("remote signer exposes no accounts")
	}
	return accounts[0], nil
}

// RemoteSigner defers every signature to an externally owned account. It can
// never sign headlessly, so session establishment is lazy: deferred to the
// first user-initiated signature.
type RemoteSigner struct {
	provider Provider
	address  common.Address
	log      interfaces.ILogger
}

func NewRemoteSigner(provider Provider, address common.Address, log interfaces.ILogger) *RemoteSigner {
	return &RemoteSigner{provider: provider, address: address, log: log}
}

func (s *RemoteSigner) Address() common.Address {
	return s.address
}

func (s *RemoteSigner) Headless() bool {
	return false
}

func (s *RemoteSigner) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	var sig hexutil.Bytes
	err := s.provider.Request(ctx, &sig, "personal_sign", hexutil.Encode(msg), s.address)
	if err != nil {
		return nil, lib.WrapError(ErrSignatureRejected, err)
	}
	return sig, nil
}

func (s *RemoteSigner) SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	call := map[string]interface{}{
		"from":    s.address,
		"nonce":   hexutil.Uint64(tx.Nonce()),
		"gas":     hexutil.Uint64(tx.Gas()),
		"value":   (*hexutil.Big)(tx.Value()),
		"input":   hexutil.Bytes(tx.Data()),
		"chainId": (*hexutil.Big)(chainID),
	}
	if to := tx.To(); to != nil {
		call["to"] = *to
	}
	if tx.Type() == types.DynamicFeeTxType {
		call["maxFeePerGas"] = (*hexutil.Big)(tx.GasFeeCap())
		call["maxPriorityFeePerGas"] = (*hexutil.Big)(tx.GasTipCap())
	} else {
		call["gasPrice"] = (*hexutil.Big)(tx.GasPrice())
	}

	var raw json.RawMessage
	if err := s.provider.Request(ctx, &raw, "eth_signTransaction", call); err != nil {
		return nil, lib.WrapError(ErrSignatureRejected, err)
	}

	encoded, err := decodeSignedTx(raw)
	if err != nil {
		return nil, err
	}

	signed := new(types.Transaction)
	if err := signed.UnmarshalBinary(encoded); err != nil {
		return nil, err
	}
	return signed, nil
}

// decodeSignedTx accepts both response shapes seen in the wild:
// {"raw": "0x..."} and a bare "0x..." string.
func decodeSignedTx(raw json.RawMessage) ([]byte, error) {
	var wrapped struct {
		Raw hexutil.Bytes `json:"raw"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Raw) > 0 {
		return wrapped.Raw, nil
	}

	var bare hexutil.Bytes
	if err := json.Unmarshal(raw, &bare); err != nil {
		return nil, err
	}
	return bare, nil
}
