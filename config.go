package storefront

import (
	"errors"
	"time"

	"github.com/bunhouse/storefront-go/pkg/model"
)

// Config defines the tunable surface of the SDK. Configure it during
// initialization and treat it as immutable afterwards.
type Config struct {
	Region    RegionConfig
	Transport TransportConfig
	OTP       OTPConfig
	Audit     AuditConfig
}

// RegionConfig selects the default storefront and optionally overrides
// backend origins (self-hosted or test backends).
type RegionConfig struct {
	// Default is the region code used when no preference is persisted.
	Default string
	// BaseURLs maps region codes to replacement backend origins.
	BaseURLs map[string]string
}

// TransportConfig tunes the HTTP layer.
type TransportConfig struct {
	// Timeout bounds each HTTP request. Zero means 15s.
	Timeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
}

// OTPConfig tunes the phone-login flow.
type OTPConfig struct {
	// ResendWait is the default resend cooldown. Zero means 60s.
	ResendWait time.Duration
	// CodeLength is the expected code digit count. Zero means 6.
	CodeLength int
}

// AuditConfig controls the asynchronous audit pipeline.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

func defaultConfig() Config {
	return Config{
		Region: RegionConfig{
			Default: model.RegionOman.Code,
		},
		Transport: TransportConfig{
			Timeout:   15 * time.Second,
			UserAgent: "storefront-go/1.0",
		},
		OTP: OTPConfig{
			ResendWait: 60 * time.Second,
			CodeLength: 6,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 64,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Region.BaseURLs != nil {
		out.Region.BaseURLs = make(map[string]string, len(cfg.Region.BaseURLs))
		for code, base := range cfg.Region.BaseURLs {
			out.Region.BaseURLs[code] = base
		}
	}
	return out
}

func (c Config) validate() error {
	if c.Region.Default != "" {
		if _, ok := model.RegionByCode(c.Region.Default); !ok {
			return ErrUnknownRegion
		}
	}
	for code := range c.Region.BaseURLs {
		if _, ok := model.RegionByCode(code); !ok {
			return ErrUnknownRegion
		}
	}
	if c.Transport.Timeout < 0 {
		return errors.New("storefront: negative transport timeout")
	}
	if c.OTP.CodeLength < 0 || c.OTP.CodeLength > 10 {
		return errors.New("storefront: invalid otp code length")
	}
	return nil
}
