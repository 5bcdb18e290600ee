package backend

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/escrowhq/escrow-gateway/internal/escrow"
)

// ContractsClient talks to the contract storage microservice.
type ContractsClient struct {
	client *Client
}

func NewContractsClient(baseURL string, token TokenSource) (*ContractsClient, error) {
	client, err := NewClient(baseURL, token)
	if err != nil {
		return nil, err
	}
	return &ContractsClient{client: client}, nil
}

// CreateContractRequest is the storage-service payload. Amount is always
// micro-units with the explicit "microUSDC" tag, never a decimal string.
type CreateContractRequest struct {
	BuyerEmail    string    `json:"buyerEmail"`
	SellerAddress string    `json:"sellerAddress"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Description   string    `json:"description"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

type SubmitDisputeEntryRequest struct {
	Party         string `json:"party"`
	Reason        string `json:"reason"`
	RefundPercent int    `json:"refundPercent"`
}

func (c *ContractsClient) Create(ctx context.Context, req CreateContractRequest) (*escrow.PendingContract, error) {
	var resp escrow.PendingContract
	if err := c.client.post(ctx, "/contracts", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ContractsClient) ListByWallet(ctx context.Context, wallet string) ([]escrow.Contract, error) {
	var resp []escrow.Contract
	query := url.Values{"wallet": []string{wallet}}
	if err := c.client.get(ctx, "/contracts", query, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *ContractsClient) GetByID(ctx context.Context, id string) (*escrow.Contract, error) {
	var resp escrow.Contract
	if err := c.client.get(ctx, fmt.Sprintf("/contracts/%s", url.PathEscape(id)), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *ContractsClient) SubmitDisputeEntry(ctx context.Context, contractID string, req SubmitDisputeEntryRequest) error {
	return c.client.post(ctx, fmt.Sprintf("/contracts/%s/dispute-entries", url.PathEscape(contractID)), req, nil)
}
