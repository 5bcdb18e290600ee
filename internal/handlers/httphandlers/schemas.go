package httphandlers

import (
	"errors"
	"math/big"
	"time"

	"github.com/escrowhq/escrow-gateway/internal/currency"
	"github.com/escrowhq/escrow-gateway/internal/escrow"
	"github.com/escrowhq/escrow-gateway/internal/gas"
	"github.com/escrowhq/escrow-gateway/internal/txrelay"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type Resource struct {
	Self string `json:"self"`
}

type WalletResponse struct {
	Address       string `json:"address"`
	Headless      bool   `json:"headless"`
	Authenticated bool   `json:"authenticated"`
}

type BalanceResponse struct {
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	DisplayAmount string `json:"displayAmount"`
}

func mapBalance(balance *big.Int) BalanceResponse {
	micro := balance.Int64()
	return BalanceResponse{
		Amount:        micro,
		Currency:      currency.TagMicroUSDC,
		DisplayAmount: currency.Display(micro, currency.TagMicroUSDC),
	}
}

type Contract struct {
	Resource
	ID              string                `json:"id"`
	ContractAddress string                `json:"contractAddress,omitempty"`
	BuyerAddress    string                `json:"buyerAddress"`
	SellerAddress   string                `json:"sellerAddress"`
	Amount          int64                 `json:"amount"`
	Currency        string                `json:"currency"`
	DisplayAmount   string                `json:"displayAmount"`
	Description     string                `json:"description"`
	Status          string                `json:"status"`
	ExpiresAt       time.Time             `json:"expiresAt"`
	CreatedAt       time.Time             `json:"createdAt"`
	DisputeEntries  []escrow.DisputeEntry `json:"disputeEntries,omitempty"`
}

type PendingContract struct {
	ID            string    `json:"id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	DisplayAmount string    `json:"displayAmount"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

type DisputeRequest struct {
	Party         string  `json:"party"`
	Reason        string  `json:"reason"`
	RefundPercent float64 `json:"refundPercent"`
}

type DepositResponse struct {
	TxHash string   `json:"txHash"`
	Stages []string `json:"stages"`
}

type QuoteRequest struct {
	To          string `json:"to"`
	Data        string `json:"data,omitempty"`
	ValueWei    string `json:"valueWei,omitempty"`
	GasPriceWei string `json:"gasPriceWei,omitempty"`
}

func (r *QuoteRequest) toCallRequest() (txrelay.CallRequest, error) {
	if !common.IsHexAddress(r.To) {
		return txrelay.CallRequest{}, errors.New("invalid to address")
	}

	req := txrelay.CallRequest{To: common.HexToAddress(r.To)}

	if r.Data != "" {
		data, err := hexutil.Decode(r.Data)
		if err != nil {
			return txrelay.CallRequest{}, err
		}
		req.Data = data
	}
	if r.ValueWei != "" {
		value, ok := new(big.Int).SetString(r.ValueWei, 10)
		if !ok {
			return txrelay.CallRequest{}, errors.New("invalid valueWei")
		}
		req.Value = value
	}
	if r.GasPriceWei != "" {
		price, ok := new(big.Int).SetString(r.GasPriceWei, 10)
		if !ok {
			return txrelay.CallRequest{}, errors.New("invalid gasPriceWei")
		}
		req.GasPriceWei = price
	}

	return req, nil
}

type QuoteResponse struct {
	FeeModel     string `json:"feeModel"`
	GasLimit     uint64 `json:"gasLimit"`
	GasPriceWei  string `json:"gasPriceWei"`
	GasPriceGwei string `json:"gasPriceGwei"`
	CostWei      string `json:"costWei"`
	CostEth      string `json:"costEth"`
}

func mapQuote(q *txrelay.Quote) QuoteResponse {
	price := q.Plan.EffectiveGasPrice()
	return QuoteResponse{
		FeeModel:     q.Plan.Model.String(),
		GasLimit:     q.GasLimit,
		GasPriceWei:  price.String(),
		GasPriceGwei: formatGwei(price),
		CostWei:      q.CostWei.String(),
		CostEth:      formatEth(q.CostWei),
	}
}

type Transaction struct {
	Hash        string    `json:"hash"`
	Kind        string    `json:"kind"`
	CostWei     string    `json:"costWei"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func mapTransaction(e txrelay.HistoryEntry) Transaction {
	return Transaction{
		Hash:        e.Hash.Hex(),
		Kind:        string(e.Kind),
		CostWei:     e.CostWei.String(),
		Status:      string(e.Status),
		SubmittedAt: e.SubmittedAt,
	}
}

func formatGwei(wei *big.Int) string {
	return big.NewFloat(gas.WeiToGwei(wei)).Text('f', 4)
}

func formatEth(wei *big.Int) string {
	return big.NewFloat(gas.WeiToEth(wei)).Text('f', 8)
}
