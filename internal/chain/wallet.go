package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"PoolWarden/internal/model"
	"PoolWarden/internal/multisig"
)

// WalletClient asks a wallet daemon for transfer authorizations. Secret
// recovery phrases never pass through the pool; the daemon holds the keys
// and returns opaque signature blobs.
type WalletClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewWalletClient(baseURL, token string) *WalletClient {
	return &WalletClient{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type signRequest struct {
	Signer string          `json:"signer"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount uint64          `json:"amount"`
	Asset  model.AssetKind `json:"asset"`
	Memo   string          `json:"memo,omitempty"`
}

// Sign returns the named member's authorization for the intent.
func (w *WalletClient) Sign(member string, intent model.TransferIntent) ([]byte, error) {
	body, err := json.Marshal(signRequest{
		Signer: member,
		From:   intent.From,
		To:     intent.To,
		Amount: intent.Amount,
		Asset:  intent.Asset,
		Memo:   intent.Memo,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal sign request: %w", err)
	}
	resp, err := w.post("/v1/transaction/sign", body)
	if err != nil {
		return nil, err
	}
	var result struct {
		Signature []byte `json:"signature"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	return result.Signature, nil
}

// Collect gathers signatory approvals for a pool-held transfer. The daemon
// returns however many approvals it could obtain; threshold enforcement
// stays with the authorization policy.
func (w *WalletClient) Collect(intent model.TransferIntent) ([]multisig.Signature, error) {
	body, err := json.Marshal(signRequest{
		From:   intent.From,
		To:     intent.To,
		Amount: intent.Amount,
		Asset:  intent.Asset,
		Memo:   intent.Memo,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal multisig request: %w", err)
	}
	resp, err := w.post("/v1/multisig/sign", body)
	if err != nil {
		return nil, err
	}
	var result struct {
		Signatures []struct {
			Address string `json:"address"`
			Blob    []byte `json:"blob"`
		} `json:"signatures"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("decode signatures: %w", err)
	}
	sigs := make([]multisig.Signature, len(result.Signatures))
	for i, s := range result.Signatures {
		sigs[i] = multisig.Signature{Address: s.Address, Blob: s.Blob}
	}
	return sigs, nil
}

func (w *WalletClient) post(path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest("POST", w.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.Token != "" {
		req.Header.Set("X-API-Token", w.Token)
	}
	resp, err := w.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wallet request: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read wallet response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wallet request: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
