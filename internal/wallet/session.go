package wallet

import (
	"context"

	"github.com/escrowhq/escrow-gateway/internal/interfaces"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/atomic"
)

// AuthService is the backend auth surface the session flow needs.
type AuthService interface {
	Nonce(ctx context.Context, wallet common.Address) (string, error)
	VerifySignature(ctx context.Context, wallet common.Address, signature []byte) (string, error)
}

// Session holds the backend auth token for a connected wallet. The token
// lives in memory only. Headless wallets establish eagerly at connect time,
// prompt-bound wallets establish lazily on first use.
type Session struct {
	// deps
	signer Signer
	auth   AuthService
	log    interfaces.ILogger

	// state
	token atomic.String
}

func NewSession(signer Signer, auth AuthService, log interfaces.ILogger) *Session {
	return &Session{signer: signer, auth: auth, log: log}
}

// Establish runs the no-prompt session flow. It fails fast for wallets that
// need a user prompt instead of hanging on a signature that never comes;
// those take the lazy path through Ensure.
func (s *Session) Establish(ctx context.Context) error {
	if !s.signer.Headless() {
		return ErrHeadlessUnsupported
	}
	return s.establish(ctx)
}

// Ensure returns the session token, establishing it on first use. Backend
// clients call it before every authenticated request, so prompt-bound
// wallets authenticate on the first user-initiated action.
func (s *Session) Ensure(ctx context.Context) (string, error) {
	if token := s.token.Load(); token != "" {
		return token, nil
	}
	if err := s.establish(ctx); err != nil {
		return "", err
	}
	return s.token.Load(), nil
}

func (s *Session) Token() string {
	return s.token.Load()
}

func (s *Session) Clear() {
	s.token.Store("")
}

func (s *Session) establish(ctx context.Context) error {
	addr := s.signer.Address()

	nonce, err := s.auth.Nonce(ctx, addr)
	if err != nil {
		return err
	}

	sig, err := s.signer.SignMessage(ctx, []byte(nonce))
	if err != nil {
		return err
	}

	token, err := s.auth.VerifySignature(ctx, addr, sig)
	if err != nil {
		return err
	}

	s.token.Store(token)
	s.log.Debugf("session established for %s", addr.Hex())
	return nil
}
