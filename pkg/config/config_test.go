package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port       int    `env:"TEST_CFG_PORT" envDefault:"8003"`
	StorageKey string `env:"TEST_CFG_STORAGE_KEY" envDefault:"@RocketShoes:cart"`
	Debug      bool   `env:"TEST_CFG_DEBUG" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 8003, cfg.Port)
	assert.Equal(t, "@RocketShoes:cart", cfg.StorageKey)
	assert.False(t, cfg.Debug)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_STORAGE_KEY", "cart:test")
	t.Setenv("TEST_CFG_DEBUG", "true")

	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "cart:test", cfg.StorageKey)
	assert.True(t, cfg.Debug)
}

func TestLoadWithPrefix(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "1111")
	t.Setenv("APP_TEST_CFG_PORT", "2222")

	var cfg testConfig
	err := LoadWithPrefix(&cfg, "APP_")

	require.NoError(t, err)
	assert.Equal(t, 2222, cfg.Port)
}

type requiredConfig struct {
	APIKey string `env:"TEST_CFG_API_KEY,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
