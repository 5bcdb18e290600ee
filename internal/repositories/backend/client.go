package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const contentTypeJSON = "application/json"

// TokenSource supplies the bearer token for authenticated calls,
// establishing a session on first use. An empty token sends the request
// unauthenticated. wallet.Session satisfies it.
type TokenSource interface {
	Ensure(ctx context.Context) (string, error)
}

// APIError carries the backend's own error message when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

// Client is the shared JSON-over-HTTPS plumbing for the auth, contract
// storage and chain relay services.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   TokenSource
}

func NewClient(baseURLStr string, token TokenSource) (*Client, error) {
	baseURL, err := url.Parse(baseURLStr)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   token,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	target := c.baseURL.JoinPath(path)
	if query != nil {
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath(path).String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	// request IDs let backend support correlate a failed call with our logs
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != nil {
		token, err := c.token.Ensure(req.Context())
		if err != nil {
			return err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if out == nil || resp.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	b, _ := io.ReadAll(resp.Body)

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	message := ""
	if err := json.Unmarshal(b, &body); err == nil {
		if body.Error != "" {
			message = body.Error
		} else {
			message = body.Message
		}
	}
	if message == "" {
		message = "request failed"
	}

	return &APIError{Status: resp.StatusCode, Message: message}
}
