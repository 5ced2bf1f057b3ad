package goCookieAuth

import (
	"strings"
	"testing"
	"time"
)

func validTestConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.AccessSecret = []byte("0123456789abcdef0123456789abcdef-access")
	cfg.JWT.RefreshSecret = []byte("0123456789abcdef0123456789abcdef-refresh")
	return cfg
}

func TestDefaultConfigValidatesWithSecrets(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config with secrets to validate, got %v", err)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }, "AccessTTL"},
		{"zero refresh ttl", func(c *Config) { c.JWT.RefreshTTL = 0 }, "RefreshTTL"},
		{"access ttl not shorter", func(c *Config) { c.JWT.AccessTTL = c.JWT.RefreshTTL }, "shorter"},
		{"short access secret", func(c *Config) { c.JWT.AccessSecret = []byte("short") }, "AccessSecret"},
		{"short refresh secret", func(c *Config) { c.JWT.RefreshSecret = []byte("short") }, "RefreshSecret"},
		{"identical secrets", func(c *Config) { c.JWT.RefreshSecret = append([]byte(nil), c.JWT.AccessSecret...) }, "differ"},
		{"excessive leeway", func(c *Config) { c.JWT.Leeway = 5 * time.Minute }, "Leeway"},
		{"blank redis prefix", func(c *Config) { c.Session.RedisPrefix = "  " }, "RedisPrefix"},
		{"blank access cookie", func(c *Config) { c.Cookie.AccessName = "" }, "AccessName"},
		{"blank refresh cookie", func(c *Config) { c.Cookie.RefreshName = "" }, "RefreshName"},
		{"same cookie names", func(c *Config) { c.Cookie.RefreshName = c.Cookie.AccessName }, "differ"},
		{"tiny argon memory", func(c *Config) { c.Password.Memory = 1024 }, "Memory"},
		{"zero argon time", func(c *Config) { c.Password.Time = 0 }, "Time"},
		{"zero parallelism", func(c *Config) { c.Password.Parallelism = 0 }, "Parallelism"},
		{"short salt", func(c *Config) { c.Password.SaltLength = 8 }, "SaltLength"},
		{"short key", func(c *Config) { c.Password.KeyLength = 8 }, "KeyLength"},
		{"audit enabled without buffer", func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }, "BufferSize"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantSub, err)
			}
		})
	}
}

func TestCloneConfigIsolatesSecretsAndOrigins(t *testing.T) {
	cfg := validTestConfig()
	cfg.Redirect.AllowedOrigins = []string{"https://app.example.com"}

	clone := cloneConfig(cfg)
	clone.JWT.AccessSecret[0] ^= 0xFF
	clone.Redirect.AllowedOrigins[0] = "https://evil.example.net"

	if cfg.JWT.AccessSecret[0] == clone.JWT.AccessSecret[0] {
		t.Fatal("expected cloned secret to be independent")
	}
	if cfg.Redirect.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatal("expected cloned origins to be independent")
	}
}

func TestBuilderRequiresDependencies(t *testing.T) {
	cfg := validTestConfig()

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected error without redis client")
	}

	mr, rdb := newTestRedis(t)
	defer mr.Close()
	defer rdb.Close()

	if _, err := New().WithConfig(cfg).WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected error without user provider")
	}

	builder := New().WithConfig(cfg).WithRedis(rdb).WithUserProvider(&mockUserProvider{})
	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := builder.Build(); err == nil {
		t.Fatal("expected error reusing a built builder")
	}
}
