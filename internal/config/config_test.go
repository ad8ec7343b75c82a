package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Password: "pgpass"},
		JWT:      JWTConfig{Secret: strings.Repeat("s", 32)},
		Media: MediaConfig{
			CloudName: "demo",
			APIKey:    "key",
			APISecret: "secret",
		},
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateFailsClosed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing db password", func(c *Config) { c.Database.Password = "" }},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }},
		{"weak jwt secret", func(c *Config) { c.JWT.Secret = strings.Repeat("s", 31) }},
		{"missing cloud name", func(c *Config) { c.Media.CloudName = "" }},
		{"missing media api key", func(c *Config) { c.Media.APIKey = "" }},
		{"missing media api secret", func(c *Config) { c.Media.APISecret = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation to fail")
			}
		})
	}
}
