// Package transport is the HTTP client layer of the SDK. Every request
// derives its base URL and X-Branch header from the active region. The
// authenticated transport attaches the bearer token and runs the
// refresh-once-then-retry pipeline on 401; the public transport never
// refreshes and never terminates the session, so guest flows stay reachable
// with an expired or absent session.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bunhouse/storefront-go/internal/audit"
	"github.com/bunhouse/storefront-go/internal/telemetry"
	"github.com/bunhouse/storefront-go/pkg/model"
	"github.com/bunhouse/storefront-go/token"
)

var (
	// ErrSessionExpired is returned when a terminal 401 cleared the session:
	// either no refresh token existed, the refresh was rejected, or the
	// retried request was rejected again.
	ErrSessionExpired = errors.New("transport: session expired")

	// ErrRefreshUnavailable is returned when a refresh was needed but no
	// refresh token is stored.
	ErrRefreshUnavailable = errors.New("transport: no refresh token")

	// ErrRefreshInvalid is returned when the backend rejects the refresh
	// token.
	ErrRefreshInvalid = errors.New("transport: refresh token rejected")
)

const defaultTimeout = 15 * time.Second

// RegionFunc supplies the active region per request, so a region switch
// takes effect without rebuilding the transport.
type RegionFunc func() model.Region

// Config assembles a Transport.
type Config struct {
	// Region is required.
	Region RegionFunc
	// Tokens is required for the authenticated transport.
	Tokens *token.Manager
	// HTTPClient defaults to a 15s-timeout client.
	HTTPClient *http.Client
	// OnSessionExpired runs after a terminal 401 has cleared the tokens.
	// Embedding web shells typically compute a login redirect here; see
	// LoginRedirectURL. Never invoked by the public transport.
	OnSessionExpired func()
	// UserAgent is sent when non-empty.
	UserAgent string

	Logger   zerolog.Logger
	Recorder *telemetry.Recorder
	Audit    *audit.Dispatcher
}

// Transport issues JSON requests against the active region's backend.
type Transport struct {
	cfg       Config
	http      *http.Client
	public    bool
	refresher *refresher
}

// New returns the authenticated transport.
func New(cfg Config) (*Transport, error) {
	if cfg.Region == nil {
		return nil, errors.New("transport: region func required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("transport: token manager required")
	}
	t := newTransport(cfg, false)
	t.refresher = newRefresher(cfg, t.http)
	return t, nil
}

// NewPublic returns the public transport: no bearer token, no refresh, no
// session termination.
func NewPublic(cfg Config) (*Transport, error) {
	if cfg.Region == nil {
		return nil, errors.New("transport: region func required")
	}
	return newTransport(cfg, true), nil
}

func newTransport(cfg Config, public bool) *Transport {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Transport{cfg: cfg, http: client, public: public}
}

// Get issues a GET request and decodes the response into out.
func (t *Transport) Get(ctx context.Context, path string, out any) error {
	return t.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (t *Transport) Post(ctx context.Context, path string, body, out any) error {
	return t.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (t *Transport) Put(ctx context.Context, path string, body, out any) error {
	return t.Do(ctx, http.MethodPut, path, body, out)
}

// Do issues a request. On 401 the authenticated transport refreshes the
// token pair once and retries the original request once; a second 401 is
// terminal and clears the session. Non-2xx responses come back as
// *model.APIError. Envelope unwrapping, when the endpoint uses one, is the
// caller's responsibility.
func (t *Transport) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	t.cfg.Recorder.Inc(telemetry.MetricRequests)

	status, raw, err := t.roundTrip(ctx, method, path, payload)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && !t.public {
		t.cfg.Recorder.Inc(telemetry.MetricUnauthorized)

		if err := t.refresher.refresh(ctx); err != nil {
			// Caller cancellation says nothing about the refresh outcome;
			// only a rejected refresh terminates the session.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("refresh token: %w", err)
			}
			return t.expireSession(err)
		}

		// One retry with the refreshed token; a second 401 is terminal.
		status, raw, err = t.roundTrip(ctx, method, path, payload)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			return t.expireSession(ErrSessionExpired)
		}
		t.cfg.Recorder.Inc(telemetry.MetricRetrySuccess)
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		if status == http.StatusUnauthorized {
			t.cfg.Recorder.Inc(telemetry.MetricUnauthorized)
		}
		return normalizeError(status, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (t *Transport) roundTrip(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	region := t.cfg.Region()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, region.BaseURL+path, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Branch", region.Code)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if t.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", t.cfg.UserAgent)
	}
	if !t.public {
		if access := t.cfg.Tokens.AccessToken(); access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}

	t.cfg.Logger.Debug().
		Str("method", method).
		Str("url", req.URL.String()).
		Str("branch", region.Code).
		Msg("api request")

	resp, err := t.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	t.cfg.Logger.Debug().
		Int("status", resp.StatusCode).
		Str("path", path).
		Msg("api response")

	return resp.StatusCode, raw, nil
}

// expireSession clears the tokens, notifies, and returns ErrSessionExpired
// wrapped around the cause.
func (t *Transport) expireSession(cause error) error {
	t.cfg.Tokens.Clear()
	t.cfg.Recorder.Inc(telemetry.MetricSessionExpired)
	t.cfg.Audit.Emit(context.Background(), audit.Event{
		Timestamp: time.Now(),
		Type:      audit.EventSessionExpired,
		Region:    t.cfg.Region().Code,
		Detail:    cause.Error(),
	})
	t.cfg.Logger.Warn().Err(cause).Msg("session expired")

	if t.cfg.OnSessionExpired != nil {
		t.cfg.OnSessionExpired()
	}

	if errors.Is(cause, ErrSessionExpired) {
		return cause
	}
	return fmt.Errorf("%w: %w", ErrSessionExpired, cause)
}

// normalizeError maps whatever shape the backend returned into a uniform
// *model.APIError.
func normalizeError(status int, raw []byte) *model.APIError {
	apiErr := &model.APIError{
		StatusCode: status,
		Message:    http.StatusText(status),
	}

	var shape struct {
		Message string              `json:"message"`
		Error   string              `json:"error"`
		Title   string              `json:"title"`
		Errors  map[string][]string `json:"errors"`
	}
	if len(raw) > 0 && json.Unmarshal(raw, &shape) == nil {
		switch {
		case shape.Message != "":
			apiErr.Message = shape.Message
		case shape.Error != "":
			apiErr.Message = shape.Error
		case shape.Title != "":
			apiErr.Message = shape.Title
		}
		apiErr.Errors = shape.Errors
	}
	return apiErr
}
