// Package config loads service configuration from the environment.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/chain"
	"github.com/cyphera/cyphera-agentpay/internal/constants"
	"github.com/cyphera/cyphera-agentpay/internal/helpers"
	"github.com/ethereum/go-ethereum/common"
)

const (
	defaultPort           = "8000"
	defaultChainTimeout   = chain.DefaultTimeout
	maxChainTimeout       = 60 * time.Second
	defaultRateLimitRPS   = 10
	defaultRateLimitBurst = 20
	defaultExpirySweep    = 10 * time.Minute
	rpcURLPrefix          = "RPC_URL_"
)

// SecretResolver resolves a secret from an ARN variable with a plain env fallback.
type SecretResolver interface {
	GetSecretString(ctx context.Context, secretArnEnvVar string, fallbackEnvVar string) (string, error)
}

// Config is the runtime configuration of the service.
type Config struct {
	Stage string
	Port  string

	LedgerBackend   string
	DatabaseURL     string
	AutoMigrate     bool
	CatalogSeedFile string

	PayeeAddress      string
	SupportedNetworks []string
	RPCAPIKey         string
	// RPCURLs maps CAIP-2 network ids to RPC endpoints, from RPC_URL_<chain id>.
	RPCURLs      map[string]string
	ChainTimeout time.Duration

	JWTSecret          string
	RateLimitRPS       int
	RateLimitBurst     int
	CORSAllowedOrigins []string
	ExpirySweep        time.Duration

	AWSRegion              string
	AWSEndpointURL         string
	PurchaseEventsQueueURL string

	ResendAPIKey     string
	ReceiptFromEmail string
	ReceiptFromName  string
	ReceiptToEmails  []string
}

// Load reads configuration from the environment. Secrets are resolved through
// secrets when it is non-nil, otherwise read from the environment directly.
func Load(ctx context.Context, secrets SecretResolver) (*Config, error) {
	resolve := func(arnVar, envVar string) (string, error) {
		if secrets == nil {
			return os.Getenv(envVar), nil
		}
		return secrets.GetSecretString(ctx, arnVar, envVar)
	}

	cfg := &Config{
		Stage:                  getEnvWithDefault("STAGE", constants.LocalStage),
		Port:                   getEnvWithDefault("PORT", defaultPort),
		LedgerBackend:          strings.ToLower(getEnvWithDefault("LEDGER_BACKEND", constants.LedgerBackendPostgres)),
		CatalogSeedFile:        os.Getenv("CATALOG_SEED_FILE"),
		PayeeAddress:           strings.TrimSpace(os.Getenv("PAYEE_ADDRESS")),
		SupportedNetworks:      splitList(getEnvWithDefault("SUPPORTED_NETWORKS", chain.NetworkBaseSepolia)),
		RPCURLs:                rpcURLsFromEnv(os.Environ()),
		CORSAllowedOrigins:     splitList(getEnvWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		AWSRegion:              os.Getenv("AWS_REGION"),
		AWSEndpointURL:         os.Getenv("AWS_ENDPOINT_URL"),
		PurchaseEventsQueueURL: os.Getenv("PURCHASE_EVENTS_QUEUE_URL"),
		ReceiptFromEmail:       os.Getenv("RECEIPT_FROM_EMAIL"),
		ReceiptFromName:        getEnvWithDefault("RECEIPT_FROM_NAME", "Cyphera"),
		ReceiptToEmails:        splitList(os.Getenv("RECEIPT_TO_EMAIL")),
	}

	var err error
	if cfg.AutoMigrate, err = getBool("AUTO_MIGRATE", false); err != nil {
		return nil, err
	}
	if cfg.ChainTimeout, err = getDuration("CHAIN_TIMEOUT", defaultChainTimeout); err != nil {
		return nil, err
	}
	if cfg.ExpirySweep, err = getDuration("AUTHORIZATION_EXPIRY_SWEEP", defaultExpirySweep); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getInt("RATE_LIMIT_RPS", defaultRateLimitRPS); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", defaultRateLimitBurst); err != nil {
		return nil, err
	}

	if cfg.LedgerBackend == constants.LedgerBackendPostgres {
		if cfg.DatabaseURL, err = resolve("DATABASE_URL_ARN", "DATABASE_URL"); err != nil {
			return nil, err
		}
	}
	if cfg.RPCAPIKey, err = resolve("RPC_API_KEY_ARN", "RPC_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.JWTSecret, err = resolve("JWT_SECRET_ARN", "JWT_SECRET"); err != nil {
		return nil, err
	}
	if cfg.ResendAPIKey, err = resolve("RESEND_API_KEY_ARN", "RESEND_API_KEY"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot start with.
func (c *Config) Validate() error {
	if !helpers.IsValidStage(c.Stage) {
		return fmt.Errorf("invalid STAGE %q", c.Stage)
	}
	if !common.IsHexAddress(c.PayeeAddress) {
		return fmt.Errorf("PAYEE_ADDRESS %q is not a valid address", c.PayeeAddress)
	}
	if _, err := chain.NewRegistry(c.SupportedNetworks); err != nil {
		return fmt.Errorf("invalid SUPPORTED_NETWORKS: %w", err)
	}
	if c.ChainTimeout <= 0 || c.ChainTimeout > maxChainTimeout {
		return fmt.Errorf("CHAIN_TIMEOUT must be between 0 and %s, got %s", maxChainTimeout, c.ChainTimeout)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.ExpirySweep <= 0 {
		return fmt.Errorf("AUTHORIZATION_EXPIRY_SWEEP must be positive")
	}

	switch c.LedgerBackend {
	case constants.LedgerBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s ledger", constants.LedgerBackendPostgres)
		}
	case constants.LedgerBackendMemory:
		if c.Stage == constants.ProdEnvironment {
			return fmt.Errorf("the %s ledger is not allowed in %s", constants.LedgerBackendMemory, constants.ProdEnvironment)
		}
	default:
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}

	if c.Stage == constants.ProdEnvironment && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in %s", constants.ProdEnvironment)
	}
	if c.ResendAPIKey != "" && (c.ReceiptFromEmail == "" || len(c.ReceiptToEmails) == 0) {
		return fmt.Errorf("RECEIPT_FROM_EMAIL and RECEIPT_TO_EMAIL are required when RESEND_API_KEY is set")
	}
	return nil
}

// IsDevelopment reports whether verbose request logging should be enabled.
func (c *Config) IsDevelopment() bool {
	return c.Stage == constants.LocalStage || c.Stage == constants.DevEnvironment
}

// rpcURLsFromEnv collects RPC_URL_<chain id> overrides keyed by CAIP-2 id.
func rpcURLsFromEnv(environ []string) map[string]string {
	urls := make(map[string]string)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, rpcURLPrefix) || value == "" {
			continue
		}
		chainID := strings.TrimPrefix(key, rpcURLPrefix)
		if _, err := strconv.ParseUint(chainID, 10, 64); err != nil {
			continue
		}
		urls["eip155:"+chainID] = value
	}
	return urls
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getBool(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
