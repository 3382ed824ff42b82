package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, uint64(1000), cfg.BaseFee)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
listen_addr: ":9090"
base_fee: 5000
discount_token: "0xDiscountToken"
discount_threshold: 500
discount_percentage: 20
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, uint64(5000), cfg.BaseFee)
	assert.Equal(t, "0xDiscountToken", cfg.DiscountToken)
	assert.Equal(t, uint64(500), cfg.DiscountThreshold)
	assert.Equal(t, uint64(20), cfg.DiscountPercentage)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FACTORY_BASE_FEE", "7777")
	t.Setenv("FACTORY_LISTEN_ADDR", ":7070")
	t.Setenv("LOG_JSON", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, uint64(7777), cfg.BaseFee)
	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.True(t, cfg.LogJSON)
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
