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
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hackpredict/sdk-go/core/logging"
	"github.com/hackpredict/sdk-go/core/types"
)

// HTTPTransport is the default Transport: JSON-RPC 2.0 over HTTP against the
// ledger's RPC endpoint. Read calls share a rate limiter so odds dashboards
// fanning out per-outcome queries cannot overwhelm the endpoint.
type HTTPTransport struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

var _ Transport = (*HTTPTransport)(nil)

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(t *HTTPTransport) { t.httpClient = c }
}

// WithReadRateLimit caps read-path requests per second. Zero disables the
// limit.
func WithReadRateLimit(rps float64) HTTPOption {
	return func(t *HTTPTransport) {
		if rps > 0 {
			t.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
		} else {
			t.limiter = nil
		}
	}
}

// WithTransportLogger substitutes the transport's logger.
func WithTransportLogger(l *zap.Logger) HTTPOption {
	return func(t *HTTPTransport) { t.logger = l }
}

// NewHTTPTransport creates a transport for the given RPC endpoint.
func NewHTTPTransport(endpoint string, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(20), 40),
		logger:     logging.Logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (t *HTTPTransport) call(ctx context.Context, method string, params any, out any) error {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return errors.Wrapf(err, "marshal %s request", method)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "build %s request", method)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return errors.Wrapf(types.ErrNetworkUnavailable, "%s: %v", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return errors.Wrapf(types.ErrNetworkUnavailable, "%s: reading response: %v", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(types.ErrNetworkUnavailable, "%s: http %d: %s", method, resp.StatusCode, truncate(raw, 256))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return errors.Wrapf(err, "%s: malformed json-rpc response", method)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: rpc error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return errors.Wrapf(err, "%s: decoding result", method)
		}
	}

	t.logger.Debug("rpc call",
		zap.String("method", method),
		zap.String("id", req.ID),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (t *HTTPTransport) waitRead(ctx context.Context) error {
	if t.limiter == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}

// SimulateTransaction dry-runs an envelope. Rate limited: simulation backs
// every read path.
func (t *HTTPTransport) SimulateTransaction(ctx context.Context, envelopeB64 string) (*SimulateResponse, error) {
	if err := t.waitRead(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	var resp SimulateResponse
	if err := t.call(ctx, "simulateTransaction", map[string]string{"transaction": envelopeB64}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendTransaction submits a signed envelope. Never rate limited; writes are
// latency sensitive and already serialized per logical action.
func (t *HTTPTransport) SendTransaction(ctx context.Context, envelopeB64 string) (*SendResponse, error) {
	var resp SendResponse
	if err := t.call(ctx, "sendTransaction", map[string]string{"transaction": envelopeB64}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransaction polls a transaction by hash.
func (t *HTTPTransport) GetTransaction(ctx context.Context, hash string) (*GetTransactionResponse, error) {
	if err := t.waitRead(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	var resp GetTransactionResponse
	if err := t.call(ctx, "getTransaction", map[string]string{"hash": hash}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAccount fetches an account's sequence number.
func (t *HTTPTransport) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	if err := t.waitRead(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	var resp Account
	if err := t.call(ctx, "getAccount", map[string]string{"account": accountID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
