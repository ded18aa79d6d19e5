package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     string
	DatabaseURL    string
	MigrationsDir  string
	DefaultBalance float64

	Stripe struct {
		APIURL          string
		SecretKey       string
		AllowedStatuses []string
	}
}

func Load() (*Config, error) {
	// Load .env file if it exists (useful for local dev)
	_ = godotenv.Load()

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}

	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}

	defaultBalance := 300.0
	if v := os.Getenv("DEFAULT_BALANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_BALANCE %q: %w", v, err)
		}
		defaultBalance = f
	}

	stripeAPIURL := os.Getenv("STRIPE_API_URL")
	if stripeAPIURL == "" {
		stripeAPIURL = "https://api.stripe.com"
	}

	stripeSecretKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeSecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY must be set")
	}

	// Statuses the confirm flow accepts as settled. Production wants exactly
	// "succeeded"; demo deployments may relax this to e.g.
	// "succeeded,processing,requires_capture".
	allowed := []string{"succeeded"}
	if v := os.Getenv("GATEWAY_ALLOWED_STATUSES"); v != "" {
		allowed = allowed[:0]
		for _, s := range strings.Split(v, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				allowed = append(allowed, s)
			}
		}
		if len(allowed) == 0 {
			return nil, fmt.Errorf("GATEWAY_ALLOWED_STATUSES must name at least one status")
		}
	}

	cfg := &Config{
		ServerPort:     serverPort,
		DatabaseURL:    databaseURL,
		MigrationsDir:  migrationsDir,
		DefaultBalance: defaultBalance,
	}
	cfg.Stripe.APIURL = stripeAPIURL
	cfg.Stripe.SecretKey = stripeSecretKey
	cfg.Stripe.AllowedStatuses = allowed

	return cfg, nil
}
