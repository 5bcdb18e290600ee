package backend

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AuthClient talks to the auth microservice. Nonce and signature
// verification run unauthenticated, identity and logout carry the token.
type AuthClient struct {
	client *Client
}

func NewAuthClient(baseURL string, token TokenSource) (*AuthClient, error) {
	client, err := NewClient(baseURL, token)
	if err != nil {
		return nil, err
	}
	return &AuthClient{client: client}, nil
}

type Identity struct {
	WalletAddress string `json:"walletAddress"`
	Email         string `json:"email"`
	Provider      string `json:"provider"`
}

func (a *AuthClient) Nonce(ctx context.Context, wallet common.Address) (string, error) {
	var resp struct {
		Nonce string `json:"nonce"`
	}
	err := a.client.post(ctx, "/auth/nonce", map[string]string{"walletAddress": wallet.Hex()}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Nonce, nil
}

func (a *AuthClient) VerifySignature(ctx context.Context, wallet common.Address, signature []byte) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	body := map[string]string{
		"walletAddress": wallet.Hex(),
		"signature":     hexutil.Encode(signature),
	}
	err := a.client.post(ctx, "/auth/verify-signature", body, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (a *AuthClient) Identity(ctx context.Context) (*Identity, error) {
	var resp Identity
	if err := a.client.get(ctx, "/auth/identity", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthClient) Logout(ctx context.Context) error {
	return a.client.post(ctx, "/auth/logout", nil, nil)
}
