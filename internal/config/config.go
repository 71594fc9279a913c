package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request budget of the HTTP API (ex: 5s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Catalog
	UndoWindow     time.Duration // grace period of a pending delete (default: 5s)
	StoreTimeout   time.Duration // budget of each background store call (default: 10s)
	ReloadInterval time.Duration // periodic reload from the store (default: 0 = manual only)
	MirrorPath     string        // SQLite file of the local mirror (optional, empty = disabled)
	SeedFile       string        // Homepage bookmarks.yaml imported into an empty catalog (optional)
	NotifyCapacity int           // notifications kept in memory (default: 50)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Rate limit on mutating API routes
	RateLimitBurst     int // requests allowed at once per client IP
	RateLimitPerMinute int // tokens refilled per client IP per minute

	AllowedHosts []string // optional, restrict admin routes to specific Host headers
	AllowedCIDRS []string // optional, restrict admin routes to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("TOOLSHELF_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("TOOLSHELF_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("TOOLSHELF_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("TOOLSHELF_LOG_LEVEL", "info"),
		PrettyLog: mustBool("TOOLSHELF_PRETTY_LOG", true),

		// Catalog
		UndoWindow:     mustDuration("TOOLSHELF_UNDO_WINDOW", 5*time.Second),
		StoreTimeout:   mustDuration("TOOLSHELF_STORE_TIMEOUT", 10*time.Second),
		ReloadInterval: mustDuration("TOOLSHELF_RELOAD_INTERVAL", 0),
		MirrorPath:     getenv("TOOLSHELF_MIRROR_PATH", ""),
		SeedFile:       getenv("TOOLSHELF_SEED_FILE", ""),
		NotifyCapacity: getenvInt("TOOLSHELF_NOTIFY_CAPACITY", 50),

		// Redis settings
		RedisAddr:             requireEnv("TOOLSHELF_REDIS_ADDR"),
		RedisUser:             getenv("TOOLSHELF_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("TOOLSHELF_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("TOOLSHELF_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("TOOLSHELF_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Rate limit
		RateLimitBurst:     getenvInt("TOOLSHELF_RATE_LIMIT_BURST", 20),
		RateLimitPerMinute: getenvInt("TOOLSHELF_RATE_LIMIT_PER_MINUTE", 120),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("TOOLSHELF_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("TOOLSHELF_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("TOOLSHELF_TRUST_PROXY", false),
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Validate checks cross-field rules that env parsing alone cannot.
func (c *Config) Validate() error {
	if c.RedisPasswordRequired && c.RedisPassword == "" {
		return fmt.Errorf("TOOLSHELF_REDIS_PASSWORD is required when TOOLSHELF_REDIS_PASSWORD_REQUIRED=true")
	}
	if c.UndoWindow <= 0 {
		return fmt.Errorf("TOOLSHELF_UNDO_WINDOW must be positive, got %s", c.UndoWindow)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("TOOLSHELF_STORE_TIMEOUT must be positive, got %s", c.StoreTimeout)
	}
	if c.ReloadInterval < 0 {
		return fmt.Errorf("TOOLSHELF_RELOAD_INTERVAL must not be negative, got %s", c.ReloadInterval)
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
