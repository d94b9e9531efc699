package clients

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

	"golang.org/x/time/rate"

	"github.com/vitwit/custody/logger"
	"github.com/vitwit/custody/metrics"
	"github.com/vitwit/custody/types"
)

const (
	DefaultBaseURL        = "https://api.fireblocks.io"
	defaultRequestTimeout = 30 * time.Second

	transactionsPath = "/v1/transactions"
)

var _ Client = (*FireblocksClient)(nil)

// FireblocksClient talks to the custody provider's REST API.
type FireblocksClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	signer     *requestSigner
	limiter    *rate.Limiter
	logger     logger.Logger
	metrics    metrics.Recorder
}

type ClientOption func(*FireblocksClient)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(f *FireblocksClient) {
		f.httpClient = c
	}
}

func WithClientLogger(l logger.Logger) ClientOption {
	return func(f *FireblocksClient) {
		f.logger = logger.OrNoop(l)
	}
}

func WithClientMetrics(r metrics.Recorder) ClientOption {
	return func(f *FireblocksClient) {
		f.metrics = metrics.OrNoop(r)
	}
}

// WithRateLimit caps outgoing requests to rps per second. Zero disables limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(f *FireblocksClient) {
		if rps <= 0 {
			f.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewFireblocksClient creates a client from the credentials in cfg.
func NewFireblocksClient(cfg types.Config, opts ...ClientOption) (*FireblocksClient, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, &types.CustodyError{
			Code:    types.ErrConfigError,
			Message: "api key and api secret are required",
		}
	}

	signer, err := newRequestSigner(cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, &types.CustodyError{
			Code:    types.ErrConfigError,
			Message: "invalid api secret",
			Err:     err,
		}
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := defaultRequestTimeout
	if cfg.RequestTimeout > 0 {
		timeout = cfg.RequestTimeout
	}

	c := &FireblocksClient{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		signer:     signer,
		logger:     logger.NoopLogger{},
		metrics:    metrics.NoopRecorder{},
	}
	WithRateLimit(cfg.RateLimitRPS, 1)(c)

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateTransaction implements Client.
func (c *FireblocksClient) CreateTransaction(
	ctx context.Context,
	req *types.TransactionRequest,
) (*types.CreateTransactionResponse, error) {
	if req == nil {
		return nil, &types.CustodyError{
			Code:    types.ErrInvalidPayload,
			Message: "transaction request is nil",
		}
	}

	var out types.CreateTransactionResponse
	if err := c.do(ctx, http.MethodPost, transactionsPath, req, &out); err != nil {
		return nil, err
	}

	if out.ID == "" {
		return nil, &types.CustodyError{
			Code:    types.ErrInvalidResponse,
			Message: "create transaction response has no id",
		}
	}
	return &out, nil
}

// GetTransactionByID implements Client.
func (c *FireblocksClient) GetTransactionByID(ctx context.Context, id string) (*types.TransactionResponse, error) {
	if id == "" {
		return nil, &types.CustodyError{
			Code:    types.ErrInvalidPayload,
			Message: "transaction id is required",
		}
	}

	var out types.TransactionResponse
	if err := c.do(ctx, http.MethodGet, transactionsPath+"/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Close implements Client.
func (c *FireblocksClient) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *FireblocksClient) do(ctx context.Context, method, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &types.CustodyError{
				Code:    types.ErrInvalidPayload,
				Message: ErrRequestEncoding,
				Err:     err,
			}
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &types.CustodyError{
				Code:    types.ErrNetworkError,
				Message: ErrRateLimited,
				Err:     err,
			}
		}
	}

	token, err := c.signer.sign(path, payload)
	if err != nil {
		return &types.CustodyError{
			Code:    types.ErrConfigError,
			Message: ErrRequestSigning,
			Err:     err,
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	c.metrics.ObserveLatency(metrics.OperationAPIRequest, time.Since(start), nil)
	if err != nil {
		return &types.CustodyError{
			Code:    types.ErrNetworkError,
			Message: ErrTransport,
			Err:     err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &types.CustodyError{
			Code:    types.ErrNetworkError,
			Message: ErrTransport,
			Err:     fmt.Errorf("read response: %w", err),
		}
	}

	c.logger.Debug("custody api call", map[string]any{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &types.CustodyError{
			Code:    types.ErrInvalidResponse,
			Message: ErrMalformedResponse,
			Err:     err,
		}
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	apiErr.Code = codeForStatus(status)
	return apiErr
}
