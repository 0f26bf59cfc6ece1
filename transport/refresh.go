package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bunhouse/storefront-go/internal/audit"
	"github.com/bunhouse/storefront-go/internal/telemetry"
	"github.com/bunhouse/storefront-go/pkg/model"
)

// refresher serializes token refreshes. Concurrent requests that each hit a
// 401 share one in-flight refresh instead of racing, which would burn the
// single-use refresh token.
type refresher struct {
	cfg  Config
	http *http.Client

	mu       sync.Mutex
	inflight *refreshAttempt
}

type refreshAttempt struct {
	done chan struct{}
	err  error
}

func newRefresher(cfg Config, client *http.Client) *refresher {
	return &refresher{cfg: cfg, http: client}
}

// refresh performs (or joins) a single token refresh. Callers that arrive
// while a refresh is in flight wait for its outcome and reuse it.
func (r *refresher) refresh(ctx context.Context) error {
	r.mu.Lock()
	if cur := r.inflight; cur != nil {
		r.mu.Unlock()
		select {
		case <-cur.done:
			return cur.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	attempt := &refreshAttempt{done: make(chan struct{})}
	r.inflight = attempt
	r.mu.Unlock()

	attempt.err = r.doRefresh(ctx)

	r.mu.Lock()
	r.inflight = nil
	r.mu.Unlock()
	close(attempt.done)

	return attempt.err
}

func (r *refresher) doRefresh(ctx context.Context) error {
	refreshToken := r.cfg.Tokens.RefreshToken()
	if refreshToken == "" {
		return ErrRefreshUnavailable
	}

	region := r.cfg.Region()
	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return fmt.Errorf("encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		region.BaseURL+"/api/Account/RefreshToken", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Branch", region.Code)

	resp, err := r.http.Do(req)
	if err != nil {
		r.refreshFailed(region, err)
		return fmt.Errorf("refresh token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: status %d", ErrRefreshInvalid, resp.StatusCode)
		r.refreshFailed(region, err)
		return err
	}

	var pair model.TokenPair
	if decodeErr := json.NewDecoder(resp.Body).Decode(&pair); decodeErr != nil || pair.AccessToken == "" {
		err := fmt.Errorf("%w: malformed response", ErrRefreshInvalid)
		r.refreshFailed(region, err)
		return err
	}

	if err := r.cfg.Tokens.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("persist refreshed tokens: %w", err)
	}

	r.cfg.Recorder.Inc(telemetry.MetricRefreshSuccess)
	r.cfg.Audit.Emit(context.Background(), audit.Event{
		Timestamp: time.Now(),
		Type:      audit.EventRefresh,
		Region:    region.Code,
	})
	r.cfg.Logger.Debug().Msg("token pair refreshed")
	return nil
}

func (r *refresher) refreshFailed(region model.Region, cause error) {
	r.cfg.Recorder.Inc(telemetry.MetricRefreshFailure)
	r.cfg.Audit.Emit(context.Background(), audit.Event{
		Timestamp: time.Now(),
		Type:      audit.EventRefreshFailed,
		Region:    region.Code,
		Detail:    cause.Error(),
	})
}
