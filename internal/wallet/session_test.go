package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type authServiceMock struct {
	nonce       string
	token       string
	verifyCalls int
}

func (m *authServiceMock) Nonce(ctx context.Context, wallet common.Address) (string, error) {
	return m.nonce, nil
}

func (m *authServiceMock) VerifySignature(ctx context.Context, wallet common.Address, signature []byte) (string, error) {
	m.verifyCalls++
	return m.token, nil
}

type promptSignerMock struct {
	KeyedSigner
	signCalls int
}

func newPromptSignerMock(t *testing.T) *promptSignerMock {
	keyed, err := NewKeyedSignerFromHex(testPrivKey)
	require.NoError(t, err)
	return &promptSignerMock{KeyedSigner: *keyed}
}

func (m *promptSignerMock) Headless() bool { return false }

func (m *promptSignerMock) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	m.signCalls++
	return m.KeyedSigner.SignMessage(ctx, msg)
}

func TestSessionEstablishHeadless(t *testing.T) {
	signer, err := NewKeyedSignerFromHex(testPrivKey)
	require.NoError(t, err)

	auth := &authServiceMock{nonce: "nonce-1", token: "token-1"}
	session := NewSession(signer, auth, lib.NewTestLogger())

	require.NoError(t, session.Establish(context.Background()))
	require.Equal(t, "token-1", session.Token())
}

func TestSessionEstablishFailsFastForPromptWallets(t *testing.T) {
	signer := newPromptSignerMock(t)
	auth := &authServiceMock{nonce: "nonce-1", token: "token-1"}
	session := NewSession(signer, auth, lib.NewTestLogger())

	err := session.Establish(context.Background())
	require.True(t, errors.Is(err, ErrHeadlessUnsupported))
	require.Zero(t, signer.signCalls, "no signature attempt should reach an incompatible wallet")
	require.Empty(t, session.Token())
}

func TestSessionEnsureLazyEstablishment(t *testing.T) {
	signer := newPromptSignerMock(t)
	auth := &authServiceMock{nonce: "nonce-1", token: "token-2"}
	session := NewSession(signer, auth, lib.NewTestLogger())

	token, err := session.Ensure(context.Background())
	require.NoError(t, err)
	require.Equal(t, "token-2", token)
	require.Equal(t, 1, signer.signCalls)

	// second call reuses the token
	token, err = session.Ensure(context.Background())
	require.NoError(t, err)
	require.Equal(t, "token-2", token)
	require.Equal(t, 1, signer.signCalls)
	require.Equal(t, 1, auth.verifyCalls)
}

func TestSessionClear(t *testing.T) {
	signer, err := NewKeyedSignerFromHex(testPrivKey)
	require.NoError(t, err)

	auth := &authServiceMock{nonce: "n", token: "t"}
	session := NewSession(signer, auth, lib.NewTestLogger())
	require.NoError(t, session.Establish(context.Background()))

	session.Clear()
	require.Empty(t, session.Token())
}
