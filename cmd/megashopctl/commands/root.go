package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"megashop/cmd/megashopctl/output"
	"megashop/internal/client"
	"megashop/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFile    string
	apiURL     string
	tokenFile  string
	jsonOutput bool

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "megashopctl",
	Short: "MegaShop operator and shopper CLI",
	Long: `megashopctl manages a MegaShop deployment and drives its API.

Operator commands talk to Postgres directly:
  migrate   - Apply, roll back or inspect schema migrations
  seed      - Load the demo catalog and promo codes

Shopper commands go through the HTTP API with a saved session:
  register, login, logout, me, products, cart, wishlist, promo, checkout, orders`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
		cfg = config.Load()
		return nil
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		output.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file first")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL including /api (default API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "Where the session token is kept (default TOKEN_FILE or the user config dir)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// session bundles the API client with the token store backing it
type session struct {
	client *client.Client
	tokens *client.TokenStore
}

func newSession() (*session, error) {
	path := tokenFile
	if path == "" {
		path = cfg.Client.TokenFile
	}
	tokens, err := client.NewTokenStore(path)
	if err != nil {
		return nil, err
	}

	token, err := tokens.Load()
	if err != nil {
		return nil, err
	}

	baseURL := apiURL
	if baseURL == "" {
		baseURL = cfg.Client.BaseURL
	}

	return &session{
		client: client.New(baseURL, client.WithToken(token)),
		tokens: tokens,
	}, nil
}

// requireLogin fails early when no token is saved
func (s *session) requireLogin() error {
	if s.client.Token() == "" {
		return fmt.Errorf("not logged in; run megashopctl login first")
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
