// Package rpcclient is a minimal JSON-RPC client for the chain's archival
// nodes. The coordinator needs exactly two queries: the finalized head for
// from-latest starts, and contract view calls for the registry bootstrap.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Archival RPC endpoints. Block timestamps older than a few epochs are
// only served by archival nodes.
const (
	MainnetArchivalURL = "https://archival-rpc.mainnet.near.org"
	TestnetArchivalURL = "https://archival-rpc.testnet.near.org"
)

// Client issues JSON-RPC 2.0 requests against one endpoint.
type Client struct {
	url  string
	http *http.Client
}

// New returns a client for the given RPC endpoint.
func New(url string) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: "dontcare", Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("call %s: unexpected status %s", method, resp.Status)
	}
	var decoded rpcResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if decoded.Error != nil {
		return fmt.Errorf("call %s: rpc error %d: %s", method, decoded.Error.Code, decoded.Error.Message)
	}
	if err := json.Unmarshal(decoded.Result, result); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

// FinalBlockHeight queries the height of the latest finalized block.
func (c *Client) FinalBlockHeight(ctx context.Context) (uint64, error) {
	var result struct {
		Header struct {
			Height uint64 `json:"height"`
		} `json:"header"`
	}
	if err := c.call(ctx, "block", map[string]string{"finality": "final"}, &result); err != nil {
		return 0, err
	}
	return result.Header.Height, nil
}

// CallFunction invokes a view method on a contract against the finalized
// state and returns the raw bytes the method produced.
func (c *Client) CallFunction(ctx context.Context, accountID, methodName string, args any) ([]byte, error) {
	encodedArgs, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode %s args: %w", methodName, err)
	}
	params := map[string]string{
		"request_type": "call_function",
		"finality":     "final",
		"account_id":   accountID,
		"method_name":  methodName,
		"args_base64":  base64.StdEncoding.EncodeToString(encodedArgs),
	}
	// The result bytes arrive as a JSON array of numbers.
	var result struct {
		Result []int `json:"result"`
	}
	if err := c.call(ctx, "query", params, &result); err != nil {
		return nil, err
	}
	out := make([]byte, len(result.Result))
	for i, b := range result.Result {
		out[i] = byte(b)
	}
	return out, nil
}
