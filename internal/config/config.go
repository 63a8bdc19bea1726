package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: "127.0.0.1:7878"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	StoreBackend string // "redis" | "sqlite" | "memory"
	SQLitePath   string // database file for the sqlite backend
	SeedFile     string // curated dataset YAML, empty = embedded default
	SkipSeed     bool   // true => never load the curated dataset

	// Sync server
	RemoteURL            string        // empty = sync disabled, local store only
	RemoteTimeout        time.Duration // per-call timeout (default: 10s)
	ConnectivityInterval time.Duration // how often /health is probed (default: 30s)

	// Redis (only read when StoreBackend is "redis")
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

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "127.0.0.1/32")
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	CORSOrigins  []string // origins allowed to call the API (browser extension pages)

	RateLimitBurst  int // mutating requests allowed in a burst per client
	RateLimitPerMin int // sustained mutating requests per client per minute
}

// Load reads the configuration from the environment, after loading a .env
// file when one exists (SUSRADAR_ENV_FILE, default ".env").
func Load() *Config {
	loadDotEnv(getenv("SUSRADAR_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SUSRADAR_LISTEN_PORT", "127.0.0.1:7878"),
		ShutdownTimeout: mustDuration("SUSRADAR_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("SUSRADAR_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SUSRADAR_PRETTY_LOG", true),

		// Storage
		StoreBackend: strings.ToLower(getenv("SUSRADAR_STORE", BackendSQLite)),
		SQLitePath:   getenv("SUSRADAR_SQLITE_PATH", "susradar.db"),
		SeedFile:     getenv("SUSRADAR_SEED_FILE", ""),
		SkipSeed:     mustBool("SUSRADAR_SKIP_SEED", false),

		// Sync
		RemoteURL:            strings.TrimRight(getenv("SUSRADAR_REMOTE_URL", ""), "/"),
		RemoteTimeout:        mustDuration("SUSRADAR_REMOTE_TIMEOUT", 10*time.Second),
		ConnectivityInterval: mustDuration("SUSRADAR_CONNECTIVITY_INTERVAL", 30*time.Second),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("SUSRADAR_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("SUSRADAR_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SUSRADAR_TRUST_PROXY", false),
		CORSOrigins:  splitAndTrim(getenv("SUSRADAR_CORS_ORIGINS", "chrome-extension://*,moz-extension://*")),

		RateLimitBurst:  getenvInt("SUSRADAR_RATE_LIMIT_BURST", 20),
		RateLimitPerMin: getenvInt("SUSRADAR_RATE_LIMIT_PER_MIN", 120),
	}

	switch cfg.StoreBackend {
	case BackendRedis:
		loadRedis(cfg)
	case BackendSQLite:
		if cfg.SQLitePath == "" {
			panic("❌ FATAL: SUSRADAR_SQLITE_PATH must not be empty when SUSRADAR_STORE=sqlite")
		}
	case BackendMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: Invalid SUSRADAR_STORE %q (want redis, sqlite or memory)", cfg.StoreBackend))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// SyncEnabled reports whether a sync server is configured.
func (c *Config) SyncEnabled() bool { return c.RemoteURL != "" }

func loadRedis(cfg *Config) {
	cfg.RedisAddr = requireEnv("SUSRADAR_REDIS_ADDR")
	cfg.RedisUser = getenv("SUSRADAR_REDIS_USERNAME", "default")
	cfg.RedisPasswordRequired = mustBool("SUSRADAR_REDIS_PASSWORD_REQUIRED", true)
	cfg.RedisPassword = getenv("SUSRADAR_REDIS_PASSWORD", "")
	cfg.RedisDB = requireEnvInt("SUSRADAR_REDIS_DB")
	cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: SUSRADAR_REDIS_PASSWORD is required when SUSRADAR_REDIS_PASSWORD_REQUIRED=true")
	}
}

// loadDotEnv loads path into the environment. Variables already set win.
// A missing file is not an error.
func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("❌ FATAL: Cannot read env file %s: %v", path, err))
	}
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

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
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
