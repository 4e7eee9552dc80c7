package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CURRENCY", "")
	t.Setenv("VAT_PERCENT", "")
	t.Setenv("SWEEP_AFTER", "")
	t.Setenv("SWEEP_MAX_AGE", "")

	cfg := Load()

	assert.Equal(t, "AED", cfg.Currency)
	assert.Equal(t, 5.0, cfg.VATPercent)
	assert.Equal(t, 30*time.Minute, cfg.SweepAfter)
	assert.Equal(t, 24*time.Hour, cfg.SweepMaxAge)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CURRENCY", "usd")
	t.Setenv("VAT_PERCENT", "7.5")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("SWEEP_AFTER", "10m")
	t.Setenv("RATE_LIMIT_CAPACITY", "not-a-number")

	cfg := Load()

	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 7.5, cfg.VATPercent)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10*time.Minute, cfg.SweepAfter)
	assert.Equal(t, 20, cfg.RateLimitCapacity)
}

func TestValidate(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY")
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg = Config{StripeSecretKey: "sk", StripeWebhookSecret: "whsec", JWTSecret: "s", VATPercent: 5}
	assert.NoError(t, cfg.Validate())

	cfg.VATPercent = -1
	assert.Error(t, cfg.Validate())
}
