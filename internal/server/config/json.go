package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/suggestionapp/internal/flagx"
	rediscache "github.com/dmitrijs2005/suggestionapp/internal/server/cache/redis"
	"github.com/dmitrijs2005/suggestionapp/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "90s" and integer nanoseconds are accepted.
//
// Only fields present in the file override the current values.
type JsonConfig struct {
	ListenAddr           string             `json:"listen_addr"`
	DBDialect            string             `json:"db_dialect"`
	DatabaseDSN          string             `json:"database_dsn"`
	SecretKey            string             `json:"secret_key"`
	TokenTTL             *timex.Duration    `json:"token_ttl"`
	LoginKey             string             `json:"login_key"`
	CacheBackend         string             `json:"cache_backend"`
	Redis                *rediscache.Config `json:"redis"`
	CacheCleanupInterval *timex.Duration    `json:"cache_cleanup_interval"`
	TagCacheTTL          *timex.Duration    `json:"tag_cache_ttl"`
	SuggestionCacheTTL   *timex.Duration    `json:"suggestion_cache_ttl"`
	RateLimitPerMinute   *int               `json:"rate_limit_per_minute"`
	RateLimitBurst       *int               `json:"rate_limit_burst"`
	LogLevel             string             `json:"log_level"`
}

// parseJson overlays the JSON file named by -c/-config, or by the
// SUGGESTIONAPP_CONFIG environment variable, onto config. Nothing happens
// when neither is set.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args, ConfigEnvVar)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.DBDialect, c.DBDialect)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LoginKey, c.LoginKey)
	setString(&config.CacheBackend, c.CacheBackend)
	setString(&config.LogLevel, c.LogLevel)

	if c.TokenTTL != nil {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.CacheCleanupInterval != nil {
		config.CacheCleanupInterval = c.CacheCleanupInterval.Duration
	}
	if c.TagCacheTTL != nil {
		config.TagCacheTTL = c.TagCacheTTL.Duration
	}
	if c.SuggestionCacheTTL != nil {
		config.SuggestionCacheTTL = c.SuggestionCacheTTL.Duration
	}
	if c.RateLimitPerMinute != nil {
		config.RateLimitPerMinute = *c.RateLimitPerMinute
	}
	if c.RateLimitBurst != nil {
		config.RateLimitBurst = *c.RateLimitBurst
	}
	if c.Redis != nil {
		config.Redis = *c.Redis
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
