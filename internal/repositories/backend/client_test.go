package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/escrowhq/escrow-gateway/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (t staticToken) Ensure(ctx context.Context) (string, error) { return string(t), nil }

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, staticToken("tok-1"))
	require.NoError(t, err)
	require.NoError(t, client.get(context.Background(), "/x", nil, nil))
	require.Equal(t, "Bearer tok-1", gotAuth)
}

func TestClientOmitsEmptyToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, staticToken(""))
	require.NoError(t, err)
	require.NoError(t, client.get(context.Background(), "/x", nil, nil))
	require.Empty(t, gotAuth)
}

func TestClientSurfacesBackendErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"contract already funded"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, nil)
	require.NoError(t, err)

	err = client.post(context.Background(), "/x", map[string]string{}, nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, apiErr.Status)
	require.Equal(t, "contract already funded", apiErr.Message)
}

func TestClientGenericMessageWhenBodyUnparseable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream exploded`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, nil)
	require.NoError(t, err)

	err = client.get(context.Background(), "/x", nil, nil)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	require.Equal(t, "request failed", apiErr.Message)
}

// promptBoundSigner signs only when the user confirms, so it can never
// establish a session eagerly.
type promptBoundSigner struct {
	wallet.KeyedSigner
}

func (s *promptBoundSigner) Headless() bool { return false }

func TestLazySessionAuthenticatesFirstBackendCall(t *testing.T) {
	keyed, err := wallet.NewKeyedSignerFromHex("fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19")
	require.NoError(t, err)
	signer := &promptBoundSigner{KeyedSigner: *keyed}

	var verifyCalls int
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/nonce":
			w.Write([]byte(`{"nonce":"sign me: 7"}`))
		case "/auth/verify-signature":
			verifyCalls++
			w.Write([]byte(`{"token":"jwt-lazy"}`))
		default:
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{"id":"ct-1"}`))
		}
	}))
	defer srv.Close()

	authClient, err := NewAuthClient(srv.URL, nil)
	require.NoError(t, err)
	session := wallet.NewSession(signer, authClient, lib.NewTestLogger())

	// eager establishment is refused for prompt-bound wallets
	require.ErrorIs(t, session.Establish(context.Background()), wallet.ErrHeadlessUnsupported)
	require.Empty(t, session.Token())

	contracts, err := NewContractsClient(srv.URL, session)
	require.NoError(t, err)

	got, err := contracts.GetByID(context.Background(), "ct-1")
	require.NoError(t, err)
	require.Equal(t, "ct-1", got.ID)
	require.Equal(t, "Bearer jwt-lazy", gotAuth, "first backend call must establish the session")
	require.Equal(t, 1, verifyCalls)

	// the token is cached afterwards
	_, err = contracts.GetByID(context.Background(), "ct-1")
	require.NoError(t, err)
	require.Equal(t, 1, verifyCalls)
}

func TestAuthClientNonceAndVerify(t *testing.T) {
	wallet := common.HexToAddress("0x1111111111111111111111111111111111111111")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/nonce":
			w.Write([]byte(`{"nonce":"sign me: 42"}`))
		case "/auth/verify-signature":
			w.Write([]byte(`{"token":"jwt-1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	auth, err := NewAuthClient(srv.URL, nil)
	require.NoError(t, err)

	nonce, err := auth.Nonce(context.Background(), wallet)
	require.NoError(t, err)
	require.Equal(t, "sign me: 42", nonce)

	token, err := auth.VerifySignature(context.Background(), wallet, []byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, "jwt-1", token)
}
