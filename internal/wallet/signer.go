package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrHeadlessUnsupported = errors.New("wallet cannot sign without a user prompt")
	ErrSignatureRejected   = errors.New("signature rejected by wallet")
)

// Signer is the capability contract every supported wallet variant
// implements. The variant is selected once at connection time; call sites
// branch on Headless(), never on the concrete type.
type Signer interface {
	Address() common.Address

	// Headless reports whether the wallet can produce signatures without a
	// user prompt. Embedded/social-login wallets can, externally owned
	// accounts cannot.
	Headless() bool

	// SignMessage signs with personal_sign semantics (EIP-191 text prefix).
	SignMessage(ctx context.Context, msg []byte) ([]byte, error)

	SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}
