package httphandlers

import (
	"fmt"
	"time"

	"github.com/escrowhq/escrow-gateway/internal/contractmanager"
	"github.com/escrowhq/escrow-gateway/internal/currency"
	"github.com/escrowhq/escrow-gateway/internal/escrow"
	"github.com/gin-gonic/gin"
)

// CreateContract accepts the amount as a decimal USDC string and converts it
// exactly once; everything downstream works in tagged micro-units.
func (h *HTTPHandler) CreateContract(ctx *gin.Context) {
	var form escrow.CreateForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		ctx.JSON(400, gin.H{"error": err.Error()})
		return
	}

	pending, err := h.contracts.Create(ctx, form, h.tx.Address().Hex(), time.Now())
	if err != nil {
		h.metrics.incContractCreated("error")
		h.abortWithError(ctx, err)
		return
	}
	h.metrics.incContractCreated("ok")

	ctx.JSON(201, PendingContract{
		ID:            pending.ID,
		Amount:        pending.Amount,
		Currency:      pending.Currency,
		DisplayAmount: currency.Display(pending.Amount, pending.Currency),
		ExpiresAt:     pending.ExpiresAt,
	})
}

func (h *HTTPHandler) GetContracts(ctx *gin.Context) {
	wallet := ctx.Query("wallet")
	if wallet == "" {
		wallet = h.tx.Address().Hex()
	}

	filter := escrow.Filter{
		Wallet: wallet,
		Role:   escrow.Role(ctx.Query("role")),
		Status: escrow.Status(ctx.Query("status")),
		Search: ctx.Query("search"),
	}
	sortBy := escrow.SortBy(ctx.DefaultQuery("sortBy", string(escrow.SortByCreatedAt)))
	desc := ctx.DefaultQuery("order", "desc") == "desc"

	now := time.Now()
	contracts, err := h.contracts.List(ctx, filter, sortBy, desc, now)
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}

	data := make([]Contract, 0, len(contracts))
	for i := range contracts {
		data = append(data, *h.mapContract(&contracts[i], now))
	}
	ctx.JSON(200, data)
}

func (h *HTTPHandler) GetContract(ctx *gin.Context) {
	contractID := ctx.Param("ID")
	if contractID == "" {
		ctx.JSON(400, gin.H{"error": "contract id is required"})
		return
	}

	contract, err := h.contracts.Get(ctx, contractID)
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.JSON(200, h.mapContract(contract, time.Now()))
}

func (h *HTTPHandler) Deposit(ctx *gin.Context) {
	contractID := ctx.Param("ID")

	var stages []string
	hash, err := h.contracts.Deposit(ctx, contractID, func(stage contractmanager.DepositStage) {
		stages = append(stages, string(stage))
	})
	if err != nil {
		h.metrics.incTransaction("deposit", "error")
		h.abortWithError(ctx, err)
		return
	}
	h.metrics.incTransaction("deposit", "ok")

	ctx.JSON(200, DepositResponse{TxHash: hash.Hex(), Stages: stages})
}

func (h *HTTPHandler) Claim(ctx *gin.Context) {
	contractID := ctx.Param("ID")

	hash, err := h.contracts.Claim(ctx, contractID)
	if err != nil {
		h.metrics.incTransaction("claim", "error")
		h.abortWithError(ctx, err)
		return
	}
	h.metrics.incTransaction("claim", "ok")

	ctx.JSON(200, gin.H{"txHash": hash.Hex()})
}

func (h *HTTPHandler) RaiseDispute(ctx *gin.Context) {
	contractID := ctx.Param("ID")

	var req DisputeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if req.Party == "" {
		req.Party = h.tx.Address().Hex()
	}

	hash, err := h.contracts.RaiseDispute(ctx, contractID, req.Party, req.Reason, req.RefundPercent)
	if err != nil {
		h.metrics.incTransaction("dispute", "error")
		h.abortWithError(ctx, err)
		return
	}
	h.metrics.incTransaction("dispute", "ok")

	ctx.JSON(200, gin.H{"txHash": hash.Hex()})
}

func (h *HTTPHandler) SubmitDisputeEntry(ctx *gin.Context) {
	contractID := ctx.Param("ID")

	var req DisputeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if req.Party == "" {
		req.Party = h.tx.Address().Hex()
	}

	resolved, err := h.contracts.SubmitDisputeEntry(ctx, contractID, req.Party, req.Reason, req.RefundPercent)
	if err != nil {
		h.abortWithError(ctx, err)
		return
	}

	ctx.JSON(200, gin.H{"resolved": resolved})
}

func (h *HTTPHandler) mapContract(c *escrow.Contract, now time.Time) *Contract {
	return &Contract{
		Resource: Resource{
			Self: h.publicUrl.JoinPath(fmt.Sprintf("/contracts/%s", c.ID)).String(),
		},
		ID:              c.ID,
		ContractAddress: c.ContractAddress,
		BuyerAddress:    c.BuyerAddress,
		SellerAddress:   c.SellerAddress,
		Amount:          c.Amount,
		Currency:        c.Currency,
		DisplayAmount:   c.DisplayAmount(),
		Description:     c.Description,
		Status:          string(c.EffectiveStatus(now)),
		ExpiresAt:       c.ExpiresAt,
		CreatedAt:       c.CreatedAt,
		DisputeEntries:  c.DisputeEntries,
	}
}
