package campay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"echopub/internal/core/port"
	"echopub/internal/metrics"
)

const (
	// tokenSkew renews the token a little before the gateway expires it.
	tokenSkew       = 30 * time.Second
	defaultTokenTTL = time.Hour
)

// Config holds the CamPay connection settings.
type Config struct {
	BaseURL           string
	Username          string
	Password          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client implements port.PaymentGateway against the CamPay REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenStore
	refresh    singleflight.Group
	tracer     trace.Tracer
	logger     *slog.Logger
}

func NewClient(cfg Config, tokens TokenStore, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if tokens == nil {
		tokens = NewMemoryTokenStore()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 20,
			},
		},
		limiter: rate.NewLimiter(limit, cfg.Burst),
		tokens:  tokens,
		tracer:  otel.Tracer("echopub/campay"),
		logger:  logger,
	}
}

type collectBody struct {
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	From              string `json:"from"`
	Description       string `json:"description"`
	ExternalReference string `json:"external_reference"`
}

type collectReply struct {
	Reference string `json:"reference"`
	USSDCode  string `json:"ussd_code"`
	Operator  string `json:"operator"`
}

func (c *Client) Collect(ctx context.Context, req port.CollectRequest) (port.CollectResponse, error) {
	if !req.Amount.IsInteger() {
		return port.CollectResponse{}, fmt.Errorf("%w: fractional amount %s", port.ErrInvalidInput, req.Amount)
	}
	var out collectReply
	err := c.call(ctx, "collect", http.MethodPost, "/api/collect/", collectBody{
		Amount:            req.Amount.StringFixed(0),
		Currency:          req.Currency,
		From:              req.Phone,
		Description:       req.Description,
		ExternalReference: req.ExternalReference,
	}, &out)
	if err != nil {
		return port.CollectResponse{}, err
	}
	if out.Reference == "" {
		return port.CollectResponse{}, fmt.Errorf("%w: collect reply without reference", port.ErrGateway)
	}
	return port.CollectResponse{Reference: out.Reference, USSDCode: out.USSDCode, Operator: out.Operator}, nil
}

type withdrawBody struct {
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	To                string `json:"to"`
	Description       string `json:"description"`
	ExternalReference string `json:"external_reference"`
}

func (c *Client) Withdraw(ctx context.Context, req port.WithdrawRequest) (port.WithdrawResponse, error) {
	if !req.Amount.IsInteger() {
		return port.WithdrawResponse{}, fmt.Errorf("%w: fractional amount %s", port.ErrInvalidInput, req.Amount)
	}
	var out struct {
		Reference string `json:"reference"`
	}
	err := c.call(ctx, "withdraw", http.MethodPost, "/api/withdraw/", withdrawBody{
		Amount:            req.Amount.StringFixed(0),
		Currency:          req.Currency,
		To:                req.Phone,
		Description:       req.Description,
		ExternalReference: req.ExternalReference,
	}, &out)
	if err != nil {
		return port.WithdrawResponse{}, err
	}
	if out.Reference == "" {
		return port.WithdrawResponse{}, fmt.Errorf("%w: withdraw reply without reference", port.ErrGateway)
	}
	return port.WithdrawResponse{Reference: out.Reference}, nil
}

type statusReply struct {
	Reference         string `json:"reference"`
	ExternalReference string `json:"external_reference"`
	Status            string `json:"status"`
	Reason            string `json:"reason"`
	Operator          string `json:"operator"`
}

func (c *Client) Status(ctx context.Context, gatewayReference string) (port.StatusResponse, error) {
	if gatewayReference == "" {
		return port.StatusResponse{}, fmt.Errorf("%w: empty reference", port.ErrInvalidInput)
	}
	var out statusReply
	if err := c.call(ctx, "status", http.MethodGet, "/api/transaction/"+gatewayReference+"/", nil, &out); err != nil {
		return port.StatusResponse{}, err
	}
	return port.StatusResponse{
		Reference:         out.Reference,
		ExternalReference: out.ExternalReference,
		Status:            port.GatewayStatus(strings.ToUpper(out.Status)),
		Reason:            out.Reason,
		Operator:          out.Operator,
	}, nil
}

// errUnauthorized triggers one token refresh and retry.
var errUnauthorized = errors.New("gateway rejected token")

// call performs one authenticated API call. A 401 invalidates the cached
// token and the call is retried once with a fresh one.
func (c *Client) call(ctx context.Context, op, method, path string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, "campay."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", path),
	)

	start := time.Now()
	err := c.callOnce(ctx, method, path, body, out)
	if errors.Is(err, errUnauthorized) {
		if ierr := c.tokens.Invalidate(ctx); ierr != nil {
			c.logger.Warn("gateway token invalidate failed", slog.Any("error", ierr))
		}
		err = c.callOnce(ctx, method, path, body, out)
	}
	metrics.GatewayLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("gateway call failed",
			slog.String("event", "gateway_call_failed"),
			slog.String("operation", op),
			slog.Any("error", err))
		if !errors.Is(err, port.ErrGateway) {
			err = fmt.Errorf("%w: %s: %v", port.ErrGateway, op, err)
		}
	}
	metrics.GatewayRequests.WithLabelValues(op, outcome).Inc()
	return err
}

func (c *Client) callOnce(ctx context.Context, method, path string, body, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, method, path, body, "Token "+token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return errUnauthorized
	}
	return decode(resp, out)
}

func (c *Client) send(ctx context.Context, method, path string, body any, auth string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return c.httpClient.Do(req)
}

func decode(resp *http.Response, out any) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", port.ErrGateway, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err = json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode reply: %v", port.ErrGateway, err)
	}
	return nil
}

type tokenReply struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// token returns a cached token or fetches a new one. Concurrent refreshes
// share one request.
func (c *Client) token(ctx context.Context) (string, error) {
	if token, ok, err := c.tokens.Get(ctx); err != nil {
		c.logger.Warn("gateway token store read failed", slog.Any("error", err))
	} else if ok {
		return token, nil
	}
	v, err, _ := c.refresh.Do("token", func() (any, error) {
		return c.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	resp, err := c.send(ctx, http.MethodPost, "/api/token/", map[string]string{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
	}, "")
	if err != nil {
		metrics.GatewayTokenRefresh.WithLabelValues("error").Inc()
		return "", err
	}
	defer resp.Body.Close()
	var out tokenReply
	if err = decode(resp, &out); err != nil {
		metrics.GatewayTokenRefresh.WithLabelValues("error").Inc()
		return "", err
	}
	if out.Token == "" {
		metrics.GatewayTokenRefresh.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: empty token", port.ErrGateway)
	}
	ttl := defaultTokenTTL
	if out.ExpiresIn > 0 {
		ttl = time.Duration(out.ExpiresIn) * time.Second
	}
	if ttl > 2*tokenSkew {
		ttl -= tokenSkew
	}
	if err = c.tokens.Set(ctx, out.Token, ttl); err != nil {
		c.logger.Warn("gateway token store write failed", slog.Any("error", err))
	}
	metrics.GatewayTokenRefresh.WithLabelValues("ok").Inc()
	return out.Token, nil
}
