package storefront

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/bunhouse/storefront-go/internal/audit"
	"github.com/bunhouse/storefront-go/internal/telemetry"
	"github.com/bunhouse/storefront-go/otp"
	"github.com/bunhouse/storefront-go/pkg/model"
	"github.com/bunhouse/storefront-go/session"
	"github.com/bunhouse/storefront-go/shop"
	"github.com/bunhouse/storefront-go/storage"
	"github.com/bunhouse/storefront-go/token"
	"github.com/bunhouse/storefront-go/transport"
)

// keyRegion persists the region preference next to the tokens.
const keyRegion = "region"

// Client is the assembled SDK. Safe for concurrent use after Build.
type Client struct {
	cfg      Config
	logger   zerolog.Logger
	store    storage.Store
	tokens   *token.Manager
	recorder *telemetry.Recorder
	audit    *audit.Dispatcher

	api    *transport.Transport
	public *transport.Transport

	session       *session.Manager
	catalog       *shop.CatalogService
	orders        *shop.OrderService
	notifications *shop.NotificationService

	regionMu sync.RWMutex
	region   model.Region
}

// Session returns the session manager.
func (c *Client) Session() *session.Manager {
	return c.session
}

// API returns the authenticated transport for endpoints the typed services
// do not cover.
func (c *Client) API() *transport.Transport {
	return c.api
}

// PublicAPI returns the public transport.
func (c *Client) PublicAPI() *transport.Transport {
	return c.public
}

// Tokens returns the token manager.
func (c *Client) Tokens() *token.Manager {
	return c.tokens
}

// Catalog returns the product catalog service.
func (c *Client) Catalog() *shop.CatalogService {
	return c.catalog
}

// Orders returns the order service.
func (c *Client) Orders() *shop.OrderService {
	return c.orders
}

// Notifications returns the notification settings service.
func (c *Client) Notifications() *shop.NotificationService {
	return c.notifications
}

// NewOTPFlow starts a fresh phone-login attempt wired into this client's
// transports and session manager.
func (c *Client) NewOTPFlow() (*otp.Flow, error) {
	return otp.NewFlow(otp.Config{
		Transport:  c.public,
		Tokens:     c.tokens,
		Region:     c.activeRegion,
		Notifier:   c.session,
		ResendWait: c.cfg.OTP.ResendWait,
		CodeLength: c.cfg.OTP.CodeLength,
		Logger:     c.logger,
		Recorder:   c.recorder,
		Audit:      c.audit,
	})
}

// Region returns the active storefront.
func (c *Client) Region() Region {
	return c.activeRegion()
}

// SetRegion switches the active storefront and persists the preference.
// Subsequent requests use the new base URL and X-Branch header; the session
// itself is untouched.
func (c *Client) SetRegion(code string) error {
	region, ok := model.RegionByCode(code)
	if !ok {
		return ErrUnknownRegion
	}
	region = c.applyBaseURL(region)

	c.regionMu.Lock()
	c.region = region
	c.regionMu.Unlock()

	return c.store.Set(keyRegion, code, storage.ScopeLocal)
}

func (c *Client) activeRegion() model.Region {
	c.regionMu.RLock()
	defer c.regionMu.RUnlock()
	return c.region
}

// onSessionExpired propagates a terminal 401 into the session manager.
func (c *Client) onSessionExpired() {
	if c.session != nil {
		c.session.NotifyLogout()
	}
}

// Close drains and stops the audit dispatcher. The client must not be used
// afterwards.
func (c *Client) Close() {
	c.audit.Close()
}
