package backend

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RelayClient talks to the chain relay microservice, the gas-sponsoring
// backend that deploys contracts and tops up signer balances.
type RelayClient struct {
	client *Client
}

func NewRelayClient(baseURL string, token TokenSource) (*RelayClient, error) {
	client, err := NewClient(baseURL, token)
	if err != nil {
		return nil, err
	}
	return &RelayClient{client: client}, nil
}

type RelayCreateContractRequest struct {
	ContractID    string `json:"contractId"`
	BuyerAddress  string `json:"buyerAddress"`
	SellerAddress string `json:"sellerAddress"`
	Amount        int64  `json:"amount"` // micro-units
	ExpiresAt     int64  `json:"expiresAt"`
}

type RelayCreateContractResponse struct {
	ContractAddress string `json:"contractAddress"`
	TxHash          string `json:"txHash"`
}

func (r *RelayClient) CreateContract(ctx context.Context, req RelayCreateContractRequest) (*RelayCreateContractResponse, error) {
	var resp RelayCreateContractResponse
	if err := r.client.post(ctx, "/relay/create-contract", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *RelayClient) RaiseDispute(ctx context.Context, contractID string, party string) error {
	body := map[string]string{
		"contractId": contractID,
		"party":      party,
	}
	return r.client.post(ctx, "/relay/raise-dispute", body, nil)
}

// FundWallet asks the relay to top up the signer's native balance so it can
// cover one transaction's gas; the signer still signs and submits itself.
func (r *RelayClient) FundWallet(ctx context.Context, addr common.Address, amountWei *big.Int) error {
	body := map[string]string{
		"address":   addr.Hex(),
		"amountWei": amountWei.String(),
	}
	return r.client.post(ctx, "/relay/fund-wallet", body, nil)
}

func (r *RelayClient) NotifyDeposit(ctx context.Context, contractID string, txHash common.Hash) error {
	body := map[string]string{
		"contractId": contractID,
		"txHash":     txHash.Hex(),
	}
	return r.client.post(ctx, "/relay/deposit-funds", body, nil)
}
