package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultTimeout = 10 * time.Second

// Option configures the HTTP client.
type Option func(*httpProvider)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *httpProvider) {
		p.http = hc
	}
}

// WithTimeout overrides the default per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *httpProvider) {
		if d > 0 {
			p.http.Timeout = d
		}
	}
}

// httpProvider implements Provider against a JSON-over-HTTP billing API.
type httpProvider struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Provider backed by the billing service at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) Provider {
	p := &httpProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// errorBody is the provider's error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do executes one JSON call and decodes a 2xx response into out (if non-nil).
// Provider-level rejections (4xx with a stable code) map to the package
// sentinels; transport failures and 5xx map to ErrUnavailable.
func (p *httpProvider) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("billing: marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("billing: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("billing provider unreachable")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
		}
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		switch eb.Code {
		case "insufficient_balance":
			return ErrInsufficient
		case "purchase_declined":
			return ErrDeclined
		}
		return fmt.Errorf("billing: %s: %s (%d)", path, eb.Message, resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
}

type balanceBody struct {
	Credits int64 `json:"credits"`
}

func (p *httpProvider) Balance(ctx context.Context, userID string) (int64, error) {
	var out balanceBody
	if err := p.do(ctx, http.MethodGet, "/v1/users/"+userID+"/balance", nil, &out); err != nil {
		return 0, err
	}
	return out.Credits, nil
}

func (p *httpProvider) Debit(ctx context.Context, userID string, amount int64) (int64, error) {
	in := map[string]int64{"amount": amount}
	var out balanceBody
	if err := p.do(ctx, http.MethodPost, "/v1/users/"+userID+"/debits", in, &out); err != nil {
		return 0, err
	}
	return out.Credits, nil
}

func (p *httpProvider) Grant(ctx context.Context, userID string, amount int64, key string) (int64, error) {
	in := map[string]any{"amount": amount, "idempotency_key": key}
	var out balanceBody
	if err := p.do(ctx, http.MethodPost, "/v1/users/"+userID+"/grants", in, &out); err != nil {
		return 0, err
	}
	return out.Credits, nil
}

func (p *httpProvider) Packages(ctx context.Context) ([]Package, error) {
	var out struct {
		Packages []Package `json:"packages"`
	}
	if err := p.do(ctx, http.MethodGet, "/v1/packages", nil, &out); err != nil {
		return nil, err
	}
	return out.Packages, nil
}

func (p *httpProvider) Purchase(ctx context.Context, userID, packageID string) (*PurchaseResult, error) {
	in := map[string]string{"package_id": packageID}
	var out PurchaseResult
	if err := p.do(ctx, http.MethodPost, "/v1/users/"+userID+"/purchases", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *httpProvider) Restore(ctx context.Context, userID string) (*Entitlements, error) {
	var out Entitlements
	if err := p.do(ctx, http.MethodPost, "/v1/users/"+userID+"/restore", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *httpProvider) Entitlements(ctx context.Context, userID string) (*Entitlements, error) {
	var out Entitlements
	if err := p.do(ctx, http.MethodGet, "/v1/users/"+userID+"/entitlements", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
