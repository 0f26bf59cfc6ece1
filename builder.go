package storefront

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bunhouse/storefront-go/internal/audit"
	"github.com/bunhouse/storefront-go/internal/telemetry"
	"github.com/bunhouse/storefront-go/pkg/model"
	"github.com/bunhouse/storefront-go/session"
	"github.com/bunhouse/storefront-go/shop"
	"github.com/bunhouse/storefront-go/storage"
	"github.com/bunhouse/storefront-go/token"
	"github.com/bunhouse/storefront-go/transport"
)

// Builder assembles a Client. Construction is allocation-only; no I/O
// happens before Build, and Build itself only reads the persisted region
// preference.
type Builder struct {
	config     Config
	store      storage.Store
	redis      *redis.Client
	httpClient *http.Client
	logger     zerolog.Logger
	auditSink  AuditSink

	built bool
}

// New returns a Builder with defaults: memory storage, 15s HTTP timeout,
// silent logger, auditing off.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStorage sets the persistence backend. It is wrapped in the memory
// fallback, so callers never handle storage errors.
func (b *Builder) WithStorage(store storage.Store) *Builder {
	b.store = store
	return b
}

// WithRedis uses a Redis-backed store, for server-side hosts whose replicas
// must share one session. Ignored when WithStorage was called.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient replaces the HTTP client used by both transports.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithLogger sets the structured logger.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink enables auditing into sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// Build wires storage, token manager, transports, session manager, OTP flow
// factory, and the shop services into a Client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	b.built = true

	cfg := cloneConfig(b.config)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Transport.Timeout == 0 {
		cfg.Transport.Timeout = defaultConfig().Transport.Timeout
	}

	var backing storage.Store
	switch {
	case b.store != nil:
		backing = b.store
	case b.redis != nil:
		backing = storage.NewRedisStore(b.redis, "storefront", 0)
	default:
		backing = storage.NewMemoryStore()
	}
	store := storage.NewFallback(backing)

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Transport.Timeout}
	}

	c := &Client{
		cfg:      cfg,
		logger:   b.logger,
		store:    store,
		tokens:   token.NewManager(store),
		recorder: &telemetry.Recorder{},
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}
	c.region = c.initialRegion()

	base := transport.Config{
		Region:     c.activeRegion,
		Tokens:     c.tokens,
		HTTPClient: httpClient,
		UserAgent:  cfg.Transport.UserAgent,
		Logger:     b.logger,
		Recorder:   c.recorder,
		Audit:      c.audit,
	}

	authCfg := base
	authCfg.OnSessionExpired = c.onSessionExpired
	api, err := transport.New(authCfg)
	if err != nil {
		return nil, err
	}
	public, err := transport.NewPublic(base)
	if err != nil {
		return nil, err
	}
	c.api = api
	c.public = public

	c.session, err = session.NewManager(session.Config{
		Transport: api,
		Public:    public,
		Tokens:    c.tokens,
		Logger:    b.logger,
		Recorder:  c.recorder,
		Audit:     c.audit,
	})
	if err != nil {
		return nil, err
	}

	c.catalog = shop.NewCatalogService(public)
	c.orders = shop.NewOrderService(api, public)
	c.notifications = shop.NewNotificationService(api)

	return c, nil
}

// initialRegion resolves the persisted preference, falling back to the
// configured default, then Oman.
func (c *Client) initialRegion() model.Region {
	code := c.cfg.Region.Default
	if saved, err := c.store.Get(keyRegion, storage.ScopeLocal); err == nil {
		code = saved
	}
	region, ok := model.RegionByCode(code)
	if !ok {
		region = model.RegionOman
	}
	return c.applyBaseURL(region)
}

func (c *Client) applyBaseURL(region model.Region) model.Region {
	if base, ok := c.cfg.Region.BaseURLs[region.Code]; ok && base != "" {
		region.BaseURL = base
	}
	return region
}
