package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payee = "0x1111111111111111111111111111111111111111"

type fakeResolver map[string]string

func (f fakeResolver) GetSecretString(_ context.Context, arnVar, envVar string) (string, error) {
	if v, ok := f[arnVar]; ok {
		if v == "error" {
			return "", errors.New("access denied")
		}
		return v, nil
	}
	return "", nil
}

func setBaseEnv(t *testing.T) {
	t.Setenv("STAGE", "local")
	t.Setenv("PAYEE_ADDRESS", payee)
	t.Setenv("LEDGER_BACKEND", "memory")
	t.Setenv("SUPPORTED_NETWORKS", "eip155:84532, eip155:80002")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, []string{"eip155:84532", "eip155:80002"}, cfg.SupportedNetworks)
	assert.Equal(t, 15*time.Second, cfg.ChainTimeout)
	assert.Equal(t, 10, cfg.RateLimitRPS)
	assert.False(t, cfg.AutoMigrate)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_SecretsAndOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LEDGER_BACKEND", "postgres")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("CHAIN_TIMEOUT", "5s")
	t.Setenv("RPC_URL_84532", "http://localhost:8545")
	t.Setenv("RPC_URL_notanumber", "http://ignored")

	cfg, err := Load(context.Background(), fakeResolver{
		"DATABASE_URL_ARN": "postgres://localhost/agentpay",
		"RPC_API_KEY_ARN":  "infura-key",
		"JWT_SECRET_ARN":   "jwt",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/agentpay", cfg.DatabaseURL)
	assert.Equal(t, "infura-key", cfg.RPCAPIKey)
	assert.Equal(t, "jwt", cfg.JWTSecret)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 5*time.Second, cfg.ChainTimeout)
	assert.Equal(t, map[string]string{"eip155:84532": "http://localhost:8545"}, cfg.RPCURLs)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad payee", env: map[string]string{"PAYEE_ADDRESS": "not-an-address"}},
		{name: "unknown network", env: map[string]string{"SUPPORTED_NETWORKS": "eip155:999999"}},
		{name: "timeout too long", env: map[string]string{"CHAIN_TIMEOUT": "5m"}},
		{name: "timeout not a duration", env: map[string]string{"CHAIN_TIMEOUT": "soon"}},
		{name: "postgres without url", env: map[string]string{"LEDGER_BACKEND": "postgres"}},
		{name: "unknown backend", env: map[string]string{"LEDGER_BACKEND": "redis"}},
		{name: "memory ledger in prod", env: map[string]string{"STAGE": "prod", "JWT_SECRET": "x"}},
		{name: "prod without jwt secret", env: map[string]string{"STAGE": "prod", "LEDGER_BACKEND": "postgres", "DATABASE_URL": "postgres://x"}},
		{name: "bad stage", env: map[string]string{"STAGE": "staging"}},
		{name: "email without recipients", env: map[string]string{"RESEND_API_KEY": "re_123", "RECEIPT_FROM_EMAIL": "shop@example.com"}},
		{name: "bad rate limit", env: map[string]string{"RATE_LIMIT_RPS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(context.Background(), nil)
			assert.Error(t, err)
		})
	}
}

func TestLoad_SecretResolutionFails(t *testing.T) {
	setBaseEnv(t)
	_, err := Load(context.Background(), fakeResolver{"RPC_API_KEY_ARN": "error"})
	assert.Error(t, err)
}
