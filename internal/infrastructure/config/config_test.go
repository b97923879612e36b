package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// The shipped sample config is what new deployments start from; keep it in
// sync with the sections the loader expects.
func TestSampleConfigCoversAllSections(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	var doc map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(raw, &doc))

	for _, section := range []string{"server", "database", "logger", "email", "redis", "billing", "payout"} {
		assert.Contains(t, doc, section)
	}

	billing := doc["billing"]
	assert.Contains(t, billing, "grace_period_days")
	secrets, ok := billing["webhook_secrets"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, secrets, "sslcommerz")
	assert.Contains(t, secrets, "2checkout")

	payout := doc["payout"]
	for _, key := range []string{
		"creator_share_percent",
		"premium_rate_cents",
		"platform_fee_percent",
		"gateway_fee_flat_cents",
		"tax_withholding_percent",
		"minimum_payout_cents",
		"currency",
	} {
		assert.Contains(t, payout, key)
	}
}

func TestSetDefaults(t *testing.T) {
	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Billing.GracePeriodDays)
	assert.Equal(t, 70, cfg.Payout.CreatorSharePercent)
	assert.Equal(t, int64(10000), cfg.Payout.MinimumPayoutCents)
	assert.NotEmpty(t, cfg.Server.GetAddr())
}
