package escrow

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/escrowhq/escrow-gateway/internal/currency"
	"github.com/ethereum/go-ethereum/common"
)

const maxDescriptionLen = 1000

var (
	ErrAmountNotPositive  = errors.New("amount must be greater than zero")
	ErrInvalidAddress     = errors.New("invalid ethereum address")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrDescriptionEmpty   = errors.New("description is required")
	ErrDescriptionTooLong = errors.New("description is too long")
	ErrExpiryNotFuture    = errors.New("payout time must be in the future")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidateAmount(amount string) (int64, error) {
	micro, err := currency.ToMicroUSDC(amount)
	if err != nil {
		return 0, err
	}
	if micro <= 0 {
		return 0, ErrAmountNotPositive
	}
	return micro, nil
}

func ValidateAddress(addr string) error {
	if !common.IsHexAddress(addr) {
		return ErrInvalidAddress
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidateDescription(desc string) error {
	trimmed := strings.TrimSpace(desc)
	if trimmed == "" {
		return ErrDescriptionEmpty
	}
	if len(trimmed) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// CreateForm is the contract-creation input as the buyer submits it.
type CreateForm struct {
	BuyerEmail    string    `json:"buyerEmail"`
	SellerAddress string    `json:"sellerAddress"`
	Amount        string    `json:"amount"` // decimal USDC string
	Description   string    `json:"description"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Validate checks the form and returns the amount in micro-units.
func (f *CreateForm) Validate(now time.Time) (int64, error) {
	micro, err := ValidateAmount(f.Amount)
	if err != nil {
		return 0, err
	}
	if err := ValidateEmail(f.BuyerEmail); err != nil {
		return 0, err
	}
	if err := ValidateAddress(f.SellerAddress); err != nil {
		return 0, err
	}
	if err := ValidateDescription(f.Description); err != nil {
		return 0, err
	}
	if !f.ExpiresAt.After(now) {
		return 0, ErrExpiryNotFuture
	}
	return micro, nil
}
