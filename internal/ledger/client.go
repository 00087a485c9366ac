// Package ledger provides the JSON-RPC client for the external settlement ledger.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/huutrungle2001/moral-duel-api/internal/config"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
)

// Transaction status values reported by the ledger.
const (
	TxStatusConfirmed = "confirmed"
	TxStatusPending   = "pending"
	TxStatusNotFound  = "not_found"
)

// TxStatus is the resolved state of a submitted ledger transaction.
type TxStatus struct {
	TxID          string `json:"tx_id"`
	Status        string `json:"status"`
	Confirmations int    `json:"confirmations"`
	// Payload echoes the data the transaction carries, e.g. the committed
	// verdict hash. Empty for transfers.
	Payload string `json:"payload,omitempty"`
}

// Confirmed reports whether the transaction reached at least one confirmation.
func (s *TxStatus) Confirmed() bool {
	return s.Status == TxStatusConfirmed && s.Confirmations >= 1
}

// NetworkInfo describes the connected ledger network.
type NetworkInfo struct {
	Network     string `json:"network"`
	BlockHeight int64  `json:"block_height"`
	Healthy     bool   `json:"healthy"`
}

// Ledger is the operation surface the services depend on. The JSON-RPC
// client below is the production implementation; tests substitute a mock.
type Ledger interface {
	SubmitCommitment(ctx context.Context, caseID uint, verdictHash string) (string, error)
	SubmitPayout(ctx context.Context, walletAddress string, amount int64) (string, error)
	GetTransactionStatus(ctx context.Context, txID string) (*TxStatus, error)
	GetNetworkInfo(ctx context.Context) (*NetworkInfo, error)
}

// Client talks JSON-RPC 2.0 to the ledger node.
type Client struct {
	rpcURL          string
	network         string
	platformAddress string
	contractHash    string
	httpClient      *http.Client
	log             *logger.Logger
}

// NewClient creates a new ledger client.
func NewClient(cfg *config.LedgerConfig, log *logger.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		rpcURL:          cfg.RPCURL,
		network:         cfg.Network,
		platformAddress: cfg.PlatformAddress,
		contractHash:    cfg.ContractHash,
		httpClient:      &http.Client{Timeout: timeout},
		log:             log,
	}
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("ledger rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

// call performs one JSON-RPC round trip and unmarshals the result into out.
func (c *Client) call(ctx context.Context, method string, params, out interface{}) error {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ledger rpc call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read rpc response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ledger rpc returned status %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("failed to unmarshal rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("failed to unmarshal rpc result: %w", err)
		}
	}
	return nil
}

// SubmitCommitment anchors a verdict hash on the ledger and returns the
// transaction ID. The hash itself is the transaction payload; the verdict
// stays off-chain until the case closes.
func (c *Client) SubmitCommitment(ctx context.Context, caseID uint, verdictHash string) (string, error) {
	params := map[string]interface{}{
		"network":  c.network,
		"from":     c.platformAddress,
		"contract": c.contractHash,
		"data":     verdictHash,
		"memo":     fmt.Sprintf("case:%d", caseID),
	}

	var result struct {
		TxID string `json:"tx_id"`
	}
	if err := c.call(ctx, "ledger_submitData", params, &result); err != nil {
		return "", err
	}
	if result.TxID == "" {
		return "", fmt.Errorf("ledger returned empty transaction id")
	}

	c.log.Info().
		Uint("case_id", caseID).
		Str("tx_id", result.TxID).
		Msg("Submitted verdict commitment")
	return result.TxID, nil
}

// SubmitPayout sends reward points to the user's wallet and returns the
// transaction ID.
func (c *Client) SubmitPayout(ctx context.Context, walletAddress string, amount int64) (string, error) {
	params := map[string]interface{}{
		"network": c.network,
		"from":    c.platformAddress,
		"to":      walletAddress,
		"amount":  amount,
	}

	var result struct {
		TxID string `json:"tx_id"`
	}
	if err := c.call(ctx, "ledger_transfer", params, &result); err != nil {
		return "", err
	}
	if result.TxID == "" {
		return "", fmt.Errorf("ledger returned empty transaction id")
	}
	return result.TxID, nil
}

// GetTransactionStatus looks up a submitted transaction. A transaction the
// ledger does not know yet comes back with status "not_found" rather than an
// error, since recently broadcast transactions propagate with a delay.
func (c *Client) GetTransactionStatus(ctx context.Context, txID string) (*TxStatus, error) {
	params := map[string]interface{}{
		"network": c.network,
		"tx_id":   txID,
	}

	var status TxStatus
	if err := c.call(ctx, "ledger_getTransaction", params, &status); err != nil {
		return nil, err
	}
	if status.TxID == "" {
		status.TxID = txID
	}
	return &status, nil
}

// GetNetworkInfo reports the connected network's health.
func (c *Client) GetNetworkInfo(ctx context.Context) (*NetworkInfo, error) {
	params := map[string]interface{}{"network": c.network}

	var info NetworkInfo
	if err := c.call(ctx, "ledger_getNetworkInfo", params, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
