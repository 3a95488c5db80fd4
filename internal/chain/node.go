package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PoolWarden/internal/model"
	"PoolWarden/internal/multisig"
)

// NodeClient talks to a ledger node's REST gateway.
type NodeClient struct {
	BaseURL string
	Token   string
	Client  *http.Client

	// PollInterval is the wait between confirmation checks.
	PollInterval time.Duration
}

// NewNodeClient creates a client with optional proxy support.
func NewNodeClient(baseURL, token, proxyURL string) *NodeClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &NodeClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		PollInterval: 2 * time.Second,
	}
}

func (c *NodeClient) Name() string { return "node" }

// DeriveAddress derives the multisig control address locally; the node is
// not involved.
func (c *NodeClient) DeriveAddress(signatories []string, threshold int) (string, error) {
	return DeriveMultisigAddress(signatories, threshold)
}

func (c *NodeClient) ValidateAddress(address string) bool {
	return ValidAddress(address)
}

// wireTransfer is the JSON shape the gateway accepts.
type wireTransfer struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	Amount     uint64          `json:"amount"`
	Asset      model.AssetKind `json:"asset"`
	Memo       string          `json:"memo,omitempty"`
	Signature  []byte          `json:"signature,omitempty"`
	Signatures []wireSignature `json:"signatures,omitempty"`
	Threshold  int             `json:"threshold,omitempty"`
}

type wireSignature struct {
	Address string `json:"address"`
	Blob    []byte `json:"blob"`
}

func (c *NodeClient) SubmitTransfer(intent model.TransferIntent, signature []byte) (model.Receipt, error) {
	return c.submit(wireTransfer{
		From:      intent.From,
		To:        intent.To,
		Amount:    intent.Amount,
		Asset:     intent.Asset,
		Memo:      intent.Memo,
		Signature: signature,
	})
}

func (c *NodeClient) SubmitAuthorized(xfer *multisig.AuthorizedTransfer) (model.Receipt, error) {
	w := wireTransfer{
		From:   xfer.Intent.From,
		To:     xfer.Intent.To,
		Amount: xfer.Intent.Amount,
		Asset:  xfer.Intent.Asset,
		Memo:   xfer.Intent.Memo,
	}
	for _, s := range xfer.Signatures {
		w.Signatures = append(w.Signatures, wireSignature{Address: s.Address, Blob: s.Blob})
	}
	return c.submit(w)
}

func (c *NodeClient) submit(w wireTransfer) (model.Receipt, error) {
	body, err := json.Marshal(w)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("marshal transfer: %w", err)
	}
	req, err := http.NewRequest("POST", c.BaseURL+"/v2/transactions", bytes.NewReader(body))
	if err != nil {
		return model.Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("X-API-Token", c.Token)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("submit transfer: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		if strings.Contains(string(respBody), "overspend") {
			return model.Receipt{}, fmt.Errorf("submit transfer: %w", ErrInsufficientFunds)
		}
		return model.Receipt{}, fmt.Errorf("submit transfer: status %d, body: %s: %w",
			resp.StatusCode, string(respBody), ErrTransferRejected)
	}
	var result struct {
		TxID string `json:"txId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.Receipt{}, fmt.Errorf("decode receipt: %w", err)
	}
	return model.Receipt{TxID: result.TxID}, nil
}

// WaitForConfirmation polls the pending-transaction endpoint until the
// transfer lands in a round, or the round budget runs out.
func (c *NodeClient) WaitForConfirmation(txID string, rounds int) (model.ConfirmationRecord, error) {
	endpoint := fmt.Sprintf("%s/v2/transactions/pending/%s", c.BaseURL, txID)
	for i := 0; i < rounds; i++ {
		req, err := http.NewRequest("GET", endpoint, nil)
		if err != nil {
			return model.ConfirmationRecord{}, err
		}
		if c.Token != "" {
			req.Header.Set("X-API-Token", c.Token)
		}
		resp, err := c.Client.Do(req)
		if err != nil {
			return model.ConfirmationRecord{}, fmt.Errorf("poll confirmation: %w", err)
		}
		var result struct {
			ConfirmedRound uint64 `json:"confirmed-round"`
			PoolError      string `json:"pool-error"`
		}
		decodeErr := json.NewDecoder(resp.Body).Decode(&result)
		resp.Body.Close()
		if decodeErr != nil {
			return model.ConfirmationRecord{}, fmt.Errorf("decode confirmation: %w", decodeErr)
		}
		if result.PoolError != "" {
			return model.ConfirmationRecord{}, fmt.Errorf("confirmation: %s: %w", result.PoolError, ErrTransferRejected)
		}
		if result.ConfirmedRound > 0 {
			return model.ConfirmationRecord{TxID: txID, ConfirmedRound: result.ConfirmedRound}, nil
		}
		time.Sleep(c.PollInterval)
	}
	return model.ConfirmationRecord{}, fmt.Errorf("transfer %s after %d rounds: %w", txID, rounds, ErrConfirmationTimeout)
}
