package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/escrowhq/escrow-gateway/internal/escrow"
	"github.com/escrowhq/escrow-gateway/internal/handlers/httphandlers"
)

const (
	ContentTypeApplicationJSON = "application/json"
)

// ApiClient is a typed client for the gateway's own HTTP API, used by
// integration tests and operational tooling.
type ApiClient struct {
	baseUrl *url.URL
}

func NewApiClient(baseUrlStr string) (*ApiClient, error) {
	baseUrl, err := url.Parse(baseUrlStr)
	if err != nil {
		return nil, err
	}
	return &ApiClient{
		baseUrl: baseUrl,
	}, nil
}

func (a *ApiClient) Health() error {
	resp, err := http.Get(a.baseUrl.JoinPath("/healthcheck").String())
	if err != nil {
		return err
	}
	return checkStatus(resp)
}

func (a *ApiClient) GetWallet() (*httphandlers.WalletResponse, error) {
	return get[httphandlers.WalletResponse](a.baseUrl, "/wallet")
}

func (a *ApiClient) GetWalletBalance() (*httphandlers.BalanceResponse, error) {
	return get[httphandlers.BalanceResponse](a.baseUrl, "/wallet/balance")
}

func (a *ApiClient) ConnectWallet() error {
	_, err := post[any](a.baseUrl, "/wallet/connect", nil)
	return err
}

func (a *ApiClient) DisconnectWallet() error {
	_, err := post[any](a.baseUrl, "/wallet/disconnect", nil)
	return err
}

func (a *ApiClient) GetContracts() (*[]httphandlers.Contract, error) {
	return get[[]httphandlers.Contract](a.baseUrl, "/contracts")
}

func (a *ApiClient) GetContract(ID string) (*httphandlers.Contract, error) {
	return get[httphandlers.Contract](a.baseUrl, fmt.Sprintf("/contracts/%s", ID))
}

func (a *ApiClient) CreateContract(form escrow.CreateForm) (*httphandlers.PendingContract, error) {
	return post[httphandlers.PendingContract](a.baseUrl, "/contracts", form)
}

func (a *ApiClient) Deposit(ID string) (*httphandlers.DepositResponse, error) {
	return post[httphandlers.DepositResponse](a.baseUrl, fmt.Sprintf("/contracts/%s/deposit", ID), nil)
}

func (a *ApiClient) Claim(ID string) error {
	_, err := post[any](a.baseUrl, fmt.Sprintf("/contracts/%s/claim", ID), nil)
	return err
}

func (a *ApiClient) RaiseDispute(ID string, req httphandlers.DisputeRequest) error {
	_, err := post[any](a.baseUrl, fmt.Sprintf("/contracts/%s/dispute", ID), req)
	return err
}

func (a *ApiClient) SubmitDisputeEntry(ID string, req httphandlers.DisputeRequest) error {
	_, err := post[any](a.baseUrl, fmt.Sprintf("/contracts/%s/dispute-entries", ID), req)
	return err
}

func (a *ApiClient) QuoteGas(req httphandlers.QuoteRequest) (*httphandlers.QuoteResponse, error) {
	return post[httphandlers.QuoteResponse](a.baseUrl, "/gas/quote", req)
}

func (a *ApiClient) GetTransactions() (*[]httphandlers.Transaction, error) {
	return get[[]httphandlers.Transaction](a.baseUrl, "/transactions")
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, err := io.ReadAll(resp.Body)
		var errStr string
		if err != nil {
			errStr = err.Error()
		} else {
			errStr = string(b)
		}
		return fmt.Errorf("response status code(%d): %s", resp.StatusCode, errStr)
	}
	return nil
}

func post[T any](baseUrl *url.URL, path string, body any) (*T, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	resp, err := http.Post(baseUrl.JoinPath(path).String(), ContentTypeApplicationJSON, reader)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	if resp.ContentLength == 0 {
		return nil, nil
	}

	var response T
	err = unmarshal(resp.Body, &response)
	if err != nil {
		return nil, err
	}

	return &response, nil
}

func get[T any](baseUrl *url.URL, path string) (*T, error) {
	resp, err := http.Get(baseUrl.JoinPath(path).String())
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var response T
	err = unmarshal(resp.Body, &response)
	if err != nil {
		return nil, err
	}

	return &response, nil
}

func unmarshal[T any](body io.ReadCloser, data T) error {
	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(bodyBytes, data)
}
