package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/suggestionapp/internal/flagx"
)

var knownFlags = []string{"-a", "-D", "-d", "-s", "-t", "-k", "-m", "-r", "-T", "-S", "-l", "-L"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-D string   database dialect: postgres or sqlite
//	-d string   database DSN
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-k string   login key expected in X-Login-Key
//	-m string   cache backend: memory or redis
//	-r string   redis address
//	-T duration category/status cache TTL
//	-S duration suggestion cache TTL
//	-l int      write rate limit per user per minute, 0 disables
//	-L string   log level: debug, info, warn, error
//
// Unknown arguments are filtered out with flagx.FilterArgs first, so the -c
// config flag and anything else on the command line do not collide.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.DBDialect, "D", config.DBDialect, "database dialect (postgres|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenTTL := fs.Int("t", int(config.TokenTTL.Minutes()), "token validity (in minutes)")
	fs.StringVar(&config.LoginKey, "k", config.LoginKey, "login key")
	fs.StringVar(&config.CacheBackend, "m", config.CacheBackend, "cache backend (memory|redis)")
	fs.StringVar(&config.Redis.Addr, "r", config.Redis.Addr, "redis address")
	fs.DurationVar(&config.TagCacheTTL, "T", config.TagCacheTTL, "category/status cache ttl")
	fs.DurationVar(&config.SuggestionCacheTTL, "S", config.SuggestionCacheTTL, "suggestion cache ttl")
	fs.IntVar(&config.RateLimitPerMinute, "l", config.RateLimitPerMinute, "writes per user per minute")
	fs.StringVar(&config.LogLevel, "L", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	config.TokenTTL = time.Duration(*tokenTTL) * time.Minute
	return nil
}
