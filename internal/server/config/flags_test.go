package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected func(*Config)
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-D", "sqlite", "-d", "db", "-s", "secret", "-t", "5",
				"-k", "shared", "-m", "redis", "-r", "cache:6379", "-T", "1h", "-S", "30s",
				"-l", "0", "-L", "debug",
			},
			expected: func(c *Config) {
				c.ListenAddr = "127.0.0.1:9090"
				c.DBDialect = "sqlite"
				c.DatabaseDSN = "db"
				c.SecretKey = "secret"
				c.TokenTTL = 5 * time.Minute
				c.LoginKey = "shared"
				c.CacheBackend = "redis"
				c.Redis.Addr = "cache:6379"
				c.TagCacheTTL = time.Hour
				c.SuggestionCacheTTL = 30 * time.Second
				c.RateLimitPerMinute = 0
				c.LogLevel = "debug"
			},
		},
		{
			name:     "unknown flags are ignored",
			args:     []string{"-c", "conf.json", "-x", "1", "-a", ":1"},
			expected: func(c *Config) { c.ListenAddr = ":1" },
		},
		{
			name:    "bad duration",
			args:    []string{"-S", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := defaults()
			err := parseFlags(got, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := defaults()
			tt.expected(want)
			assert.Empty(t, cmp.Diff(want, got))
		})
	}
}
