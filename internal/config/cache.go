package config

import (
	"os"
	"strconv"
	"time"
)

// CacheConfig controls the Redis response cache applied to public ad
// reads.  When Enabled is false or no Redis client is available the cache
// middleware becomes a pass-through.
type CacheConfig struct {
	Enabled bool          // master switch
	TTL     time.Duration // lifetime of cached responses
	Prefix  string        // key namespace in Redis
	MaxBody int           // largest response body to cache, in bytes
}

// LoadCacheConfig reads cache settings from the environment with defaults
// suitable for a small listing API: short TTL, 1 MiB body cap.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: getenv("CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("CACHE_TTL", "30s")),
		Prefix:  getenv("CACHE_PREFIX", "adcache"),
		MaxBody: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
