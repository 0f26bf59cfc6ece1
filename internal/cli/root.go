// Package cli implements the storefront command-line client: OTP login,
// session inspection, and storefront browsing against a configured region.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	storefront "github.com/bunhouse/storefront-go"
)

// Settings is the environment-driven CLI configuration.
type Settings struct {
	Region    string `env:"STOREFRONT_REGION, default=om"`
	BaseURL   string `env:"STOREFRONT_BASE_URL"`
	RedisAddr string `env:"STOREFRONT_REDIS_ADDR"`
	LogLevel  string `env:"STOREFRONT_LOG_LEVEL, default=info"`
}

var (
	flagRegion string
	flagDebug  bool

	logger zerolog.Logger
	client *storefront.Client
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "storefront",
		Short: "storefront is the bunhouse storefront API client",
		Long:  "Log in with a phone OTP, inspect the session, and browse the bunhouse storefront.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var settings Settings
			if err := envconfig.Process(context.Background(), &settings); err != nil {
				return fmt.Errorf("load settings: %w", err)
			}
			if flagRegion != "" {
				settings.Region = flagRegion
			}
			if flagDebug {
				settings.LogLevel = "debug"
			}

			logger = newLogger(settings.LogLevel)

			var err error
			client, err = buildClient(settings, logger)
			if err != nil {
				return fmt.Errorf("build client: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if client != nil {
				client.Close()
			}
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagRegion, "region", "", "Storefront region code (om, sa); default from STOREFRONT_REGION")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newLoginCmd(),
		newWhoamiCmd(),
		newLogoutCmd(),
		newOrdersCmd(),
		newProductsCmd(),
	)

	return root
}
