package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AlexZinkM/evm-wallet/internal/metrics"
	"github.com/AlexZinkM/evm-wallet/internal/model"
)

// AccountClient is a client for the remote account storage and contact book
type AccountClient struct {
	baseURL string
	client  *http.Client
}

// NewAccountClient creates a new account API client
func NewAccountClient(baseURL string) *AccountClient {
	return &AccountClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second, // free-tier hosts can be slow to wake up
		},
	}
}

// CreateWallet stores a new or imported wallet
func (c *AccountClient) CreateWallet(ctx context.Context, req model.NewWalletRequest) error {
	return c.do(ctx, "create", http.MethodPost, "/api/wallet", req, nil)
}

// FetchWallet returns the wallet stored under name if password is correct
func (c *AccountClient) FetchWallet(ctx context.Context, name, password string) (*model.RemoteWallet, error) {
	var w model.RemoteWallet
	body := map[string]string{"password": password}
	path := "/api/wallet/" + url.PathEscape(name)
	if err := c.do(ctx, "fetch", http.MethodPost, path, body, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// ResetPassword rotates the stored password using the mnemonic as proof
func (c *AccountClient) ResetPassword(ctx context.Context, name, mnemonic, newPassword string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	body := map[string]string{
		"name":        name,
		"mnemonic":    mnemonic,
		"newPassword": newPassword,
	}
	if err := c.do(ctx, "reset", http.MethodPut, "/api/wallet/reset-password", body, &resp); err != nil {
		return "", err
	}
	if resp.Message == "" {
		resp.Message = "Password reset successfully."
	}
	return resp.Message, nil
}

// LogTransaction records a broadcast hash. Callers treat failures as ignorable.
func (c *AccountClient) LogTransaction(ctx context.Context, hash string) error {
	return c.do(ctx, "log_tx", http.MethodPost, "/api/tx/"+url.PathEscape(hash), struct{}{}, nil)
}

// Contacts lists the contacts owned by address
func (c *AccountClient) Contacts(ctx context.Context, address string) ([]model.Contact, error) {
	var contacts []model.Contact
	path := "/api/contacts/" + url.PathEscape(address)
	if err := c.do(ctx, "contacts", http.MethodGet, path, nil, &contacts); err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	return contacts, nil
}

// AddContact stores a contact and returns it with its ID
func (c *AccountClient) AddContact(ctx context.Context, contact model.Contact) (*model.Contact, error) {
	var created model.Contact
	if err := c.do(ctx, "add_contact", http.MethodPost, "/api/contacts", contact, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteContact removes a contact by ID
func (c *AccountClient) DeleteContact(ctx context.Context, id string) error {
	return c.do(ctx, "delete_contact", http.MethodDelete, "/api/contacts/"+url.PathEscape(id), nil, nil)
}

// do sends a JSON request and decodes a JSON answer into out (if not nil).
// Non-2xx answers become WalletErrors carrying the server's {error} text.
func (c *AccountClient) do(ctx context.Context, op, method, path string, in, out interface{}) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveRequest("account_api", op, start, err) }()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return model.NewNetworkError("account API unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return model.NewNetworkError("failed to read account API response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return model.NewNetworkError("failed to decode account API response", err)
	}
	return nil
}

// statusError maps an error answer to a wallet error kind
func statusError(status int, raw []byte) error {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &e)

	msg := e.Error
	if msg == "" {
		msg = e.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("account API returned status %d", status)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return model.NewAuthError(msg)
	case status >= 400 && status < 500:
		return model.NewValidationError(msg)
	default:
		return model.NewNetworkError(msg, fmt.Errorf("status %d", status))
	}
}
