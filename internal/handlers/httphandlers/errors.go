package httphandlers

import (
	"errors"
	"net/http"

	"github.com/escrowhq/escrow-gateway/internal/contractmanager"
	"github.com/escrowhq/escrow-gateway/internal/escrow"
	"github.com/escrowhq/escrow-gateway/internal/gas"
	"github.com/escrowhq/escrow-gateway/internal/repositories/backend"
	"github.com/escrowhq/escrow-gateway/internal/txrelay"
	"github.com/escrowhq/escrow-gateway/internal/wallet"
	"github.com/gin-gonic/gin"
)

var validationErrs = []error{
	escrow.ErrAmountNotPositive,
	escrow.ErrInvalidAddress,
	escrow.ErrInvalidEmail,
	escrow.ErrDescriptionEmpty,
	escrow.ErrDescriptionTooLong,
	escrow.ErrExpiryNotFuture,
}

var stateErrs = []error{
	contractmanager.ErrNotDeployed,
	contractmanager.ErrDepositNotAllowed,
	contractmanager.ErrClaimNotAllowed,
	contractmanager.ErrDisputeNotAllowed,
}

func isPromptRequired(err error) bool {
	return errors.Is(err, wallet.ErrHeadlessUnsupported)
}

// abortWithError maps domain errors onto HTTP statuses. The gas cost limit
// rejection keeps its full numeric breakdown so the client can display it.
func (h *HTTPHandler) abortWithError(ctx *gin.Context, err error) {
	var costErr *gas.CostLimitError
	if errors.As(err, &costErr) {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":        "transaction cost exceeds configured maximum",
			"gasLimit":     costErr.GasLimit,
			"gasPriceWei":  costErr.GasPriceWei.String(),
			"costWei":      costErr.CostWei.String(),
			"maxCostWei":   costErr.MaxCostWei.String(),
			"maxPriceGwei": costErr.MaxPriceGwei,
		})
		return
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		status := http.StatusBadGateway
		if apiErr.Status == http.StatusNotFound {
			status = http.StatusNotFound
		}
		ctx.JSON(status, gin.H{"error": apiErr.Message})
		return
	}

	for _, e := range validationErrs {
		if errors.Is(err, e) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	for _, e := range stateErrs {
		if errors.Is(err, e) {
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
	}

	switch {
	case errors.Is(err, txrelay.ErrConfirmationTimeout):
		ctx.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.Is(err, txrelay.ErrTxReverted):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, wallet.ErrSignatureRejected):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		h.log.Errorf("request failed: %s", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
