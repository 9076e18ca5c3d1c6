package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Env:                        "development",
		Port:                       "8480",
		JWTSecret:                  "secure-secret-at-least-32-chars-long",
		DBPassword:                 "secure-password",
		DBSSLMode:                  "disable",
		RedisURL:                   "redis://localhost:6379",
		CacheRequestsTTLSeconds:    300,
		CacheConnectionsTTLSeconds: 600,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid development config", func(*Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"negative requests ttl", func(c *Config) { c.CacheRequestsTTLSeconds = -1 }, true},
		{"negative connections ttl", func(c *Config) { c.CacheConnectionsTTLSeconds = -5 }, true},
		{"production with default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"production with short secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, true},
		{"production with weak db password", func(c *Config) {
			c.Env = "prod"
			c.DBPassword = "password"
		}, true},
		{"production fully configured", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "require"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigTTLHelpers(t *testing.T) {
	c := validConfig()
	assert.Equal(t, float64(300), c.RequestsTTL().Seconds())
	assert.Equal(t, float64(600), c.ConnectionsTTL().Seconds())
}
