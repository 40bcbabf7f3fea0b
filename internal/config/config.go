package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DatabaseDSN string // postgres DSN (ex: "host=localhost user=marks dbname=marks")
	BcryptCost  int    // bcrypt cost for password hashing (0 = library default)

	FetchTimeout  time.Duration // timeout for fetching a bookmarked page (default: 15s)
	CacheTTL      time.Duration // TTL backstop on cached listings (default: 10m)
	SweepInterval time.Duration // interval between dead-link sweeps (default: 1m)

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

	TrustProxy bool // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// fileConfig is the optional YAML overlay, pointed at by MARKS_CONFIG_FILE.
// Environment variables win over file values.
type fileConfig struct {
	ListenPort      string `yaml:"listen_port"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	LogLevel        string `yaml:"log_level"`
	PrettyLog       *bool  `yaml:"pretty_log"`
	DatabaseDSN     string `yaml:"database_dsn"`
	BcryptCost      int    `yaml:"bcrypt_cost"`
	FetchTimeout    string `yaml:"fetch_timeout"`
	CacheTTL        string `yaml:"cache_ttl"`
	SweepInterval   string `yaml:"sweep_interval"`
	RedisAddr       string `yaml:"redis_addr"`
	RedisUser       string `yaml:"redis_username"`
	RedisPassword   string `yaml:"redis_password"`
	RedisDB         *int   `yaml:"redis_db"`
	TrustProxy      *bool  `yaml:"trust_proxy"`
}

func Load() *Config {
	file := loadFile(os.Getenv("MARKS_CONFIG_FILE"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("MARKS_LISTEN_PORT", coalesce(file.ListenPort, ":8080")),
		ShutdownTimeout: mustDuration("MARKS_SHUTDOWN_TIMEOUT", fileDuration(file.ShutdownTimeout, 5*time.Second)),

		// Logging
		LogLevel:  getenv("MARKS_LOG_LEVEL", coalesce(file.LogLevel, "info")),
		PrettyLog: mustBool("MARKS_PRETTY_LOG", fileBool(file.PrettyLog, false)),

		// Persistence
		DatabaseDSN: requireEnvOr("MARKS_DATABASE_DSN", file.DatabaseDSN),
		BcryptCost:  getenvInt("MARKS_BCRYPT_COST", file.BcryptCost),

		// Bookmark pipeline
		FetchTimeout:  mustDuration("MARKS_FETCH_TIMEOUT", fileDuration(file.FetchTimeout, 15*time.Second)),
		CacheTTL:      mustDuration("MARKS_CACHE_TTL", fileDuration(file.CacheTTL, 10*time.Minute)),
		SweepInterval: mustDuration("MARKS_SWEEP_INTERVAL", fileDuration(file.SweepInterval, time.Minute)),

		// Redis settings
		RedisAddr:             requireEnvOr("MARKS_REDIS_ADDR", file.RedisAddr),
		RedisUser:             getenv("MARKS_REDIS_USERNAME", coalesce(file.RedisUser, "default")),
		RedisPasswordRequired: mustBool("MARKS_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("MARKS_REDIS_PASSWORD", file.RedisPassword),
		RedisDB:               getenvInt("MARKS_REDIS_DB", fileInt(file.RedisDB, 0)),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		TrustProxy: mustBool("MARKS_TRUST_PROXY", fileBool(file.TrustProxy, true)),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: MARKS_REDIS_PASSWORD is required when MARKS_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.DatabaseDSN = "***REDACTED***"
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// loadFile parses the optional YAML config file. A missing path is fine,
// an unreadable or malformed file is not.
func loadFile(path string) fileConfig {
	var fc fileConfig
	if path == "" {
		return fc
	}
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Cannot read config file %s: %v", path, err))
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid YAML in config file %s: %v", path, err))
	}
	return fc
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// requireEnvOr panics unless the variable is set or the file provided a value.
func requireEnvOr(key, fileVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if fileVal != "" {
		return fileVal
	}
	panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
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

func coalesce(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func fileDuration(v string, def time.Duration) time.Duration {
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid duration in config file: %s", v))
	}
	return d
}

func fileBool(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func fileInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
