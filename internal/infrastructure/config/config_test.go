package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsPassValidation(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	require.NoError(t, validateConfig(&cfg))

	assert.Equal(t, "openrouter", cfg.AI.Provider)
	assert.Equal(t, 2, cfg.Recipe.DefaultServings)
	assert.Equal(t, 5, cfg.Recipe.DefaultTargetCount)
	assert.Equal(t, 3, cfg.Recipe.MoreCount)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, time.Second, cfg.DedupWindow)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		v := viper.New()
		setDefaults(v)
		var cfg Config
		require.NoError(t, v.Unmarshal(&cfg))
		return &cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = 0 }},
		{"unknown provider", func(c *Config) { c.AI.Provider = "gemini" }},
		{"empty model", func(c *Config) { c.AI.Model = "" }},
		{"bad cache size", func(c *Config) { c.Cache.MaxSize = 0 }},
		{"no workers", func(c *Config) { c.Queue.Workers = 0 }},
		{"zero servings", func(c *Config) { c.Recipe.DefaultServings = 0 }},
		{"zero target", func(c *Config) { c.Recipe.DefaultTargetCount = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "sk-o...wxyz", MaskAPIKey("sk-or-123456wxyz"))
}
