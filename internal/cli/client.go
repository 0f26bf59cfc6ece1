package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	storefront "github.com/bunhouse/storefront-go"
	"github.com/bunhouse/storefront-go/storage"
)

const credentialsFileName = "credentials.json"

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// buildClient assembles the SDK client: file-backed credentials by default,
// Redis when STOREFRONT_REDIS_ADDR is set.
func buildClient(settings Settings, logger zerolog.Logger) (*storefront.Client, error) {
	cfg := storefront.Config{}
	cfg.Region.Default = settings.Region
	if settings.BaseURL != "" {
		cfg.Region.BaseURLs = map[string]string{settings.Region: settings.BaseURL}
	}

	builder := storefront.New().
		WithConfig(cfg).
		WithLogger(logger)

	if settings.RedisAddr != "" {
		builder.WithRedis(redis.NewClient(&redis.Options{Addr: settings.RedisAddr}))
	} else {
		path, err := credentialsPath()
		if err != nil {
			return nil, err
		}
		store, err := storage.NewFileStore(path)
		if err != nil {
			return nil, err
		}
		builder.WithStorage(store)
	}

	return builder.Build()
}

// credentialsPath returns ~/.storefront/credentials.json.
func credentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".storefront", credentialsFileName), nil
}
