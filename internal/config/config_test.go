package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.AllowedHost)
	assert.NotEmpty(t, cfg.AllowedOrigins)
}

func TestLoadProductionHostCheck(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("HOST", "https://api.warriorcare.example:443/base")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "api.warriorcare.example", cfg.AllowedHost)
}

func TestLoadAllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")

	cfg := Load()

	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.AllowedOrigins)
}

func TestBareHostname(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://api.example.com", "api.example.com"},
		{"http://api.example.com:8080", "api.example.com"},
		{"api.example.com/path", "api.example.com"},
		{"api.example.com", "api.example.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, bareHostname(tt.in), "input %q", tt.in)
	}
}
