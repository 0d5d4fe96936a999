package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("CAMPAY_WEBHOOK_KEY", "hook")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, uint16(8080), cfg.HTTP.Port)
	assert.True(t, cfg.Pricing.CPV.Equal(decimal.NewFromInt(14)))
	assert.True(t, cfg.Pricing.OverDeliveryFactor.Equal(decimal.RequireFromString("0.8")))
	assert.Equal(t, 24*time.Hour, cfg.Pricing.ProofWindow)
	assert.Equal(t, 5*time.Second, cfg.CamPay.PollInterval)
	assert.Equal(t, 35*time.Second, cfg.CamPay.PollBudget)
	assert.Equal(t, "eng+fra", cfg.Verifier.Languages)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("CAMPAY_WEBHOOK_KEY", "hook")
	t.Setenv("STORAGE", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PRICING_CPV_AMBASSADOR", "12.5")
	t.Setenv("SWEEP_INTERVAL", "15m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Pricing.CPVAmbassador.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, 15*time.Minute, cfg.Sweep.Interval)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("CAMPAY_WEBHOOK_KEY", "hook")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresWebhookKey(t *testing.T) {
	t.Setenv("AUTH_SECRET", "s3cret")
	t.Setenv("CAMPAY_WEBHOOK_KEY", "")
	_, err := Load()
	require.Error(t, err)
}
