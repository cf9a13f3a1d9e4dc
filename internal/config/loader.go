package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MANIFOLDBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MANIFOLDBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Manifold ──
	setStr(&cfg.Manifold.BaseURL, "MANIFOLDBOT_MANIFOLD_BASE_URL")
	setStr(&cfg.Manifold.WsURL, "MANIFOLDBOT_MANIFOLD_WS_URL")
	setStr(&cfg.Manifold.ApiKey, "MANIFOLDBOT_MANIFOLD_API_KEY")
	setDuration(&cfg.Manifold.RequestTimeout, "MANIFOLDBOT_MANIFOLD_REQUEST_TIMEOUT")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "MANIFOLDBOT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "MANIFOLDBOT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "MANIFOLDBOT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "MANIFOLDBOT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "MANIFOLDBOT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "MANIFOLDBOT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "MANIFOLDBOT_POSTGRES_SSLMODE")
	setStr(&cfg.Postgres.SSLMode, "MANIFOLDBOT_POSTGRES_SSL_MODE") // compatibility alias
	setInt(&cfg.Postgres.PoolMaxConns, "MANIFOLDBOT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "MANIFOLDBOT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "MANIFOLDBOT_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "MANIFOLDBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MANIFOLDBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MANIFOLDBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MANIFOLDBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "MANIFOLDBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "MANIFOLDBOT_REDIS_TLS_ENABLED")
	setInt(&cfg.Redis.CacheTTLMinutes, "MANIFOLDBOT_REDIS_CACHE_TTL_MINUTES")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "MANIFOLDBOT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "MANIFOLDBOT_S3_REGION")
	setStr(&cfg.S3.Bucket, "MANIFOLDBOT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "MANIFOLDBOT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "MANIFOLDBOT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "MANIFOLDBOT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "MANIFOLDBOT_S3_FORCE_PATH_STYLE")

	// ── Pipeline ──
	setBool(&cfg.Pipeline.Enabled, "MANIFOLDBOT_PIPELINE_ENABLED")
	setDuration(&cfg.Pipeline.ScrapeInterval, "MANIFOLDBOT_PIPELINE_SCRAPE_INTERVAL")
	setInt(&cfg.Pipeline.PageLimit, "MANIFOLDBOT_PIPELINE_PAGE_LIMIT")
	setInt(&cfg.Pipeline.MaxPages, "MANIFOLDBOT_PIPELINE_MAX_PAGES")
	setInt(&cfg.Pipeline.RateLimitPerMinute, "MANIFOLDBOT_PIPELINE_RATE_LIMIT_PER_MINUTE")
	setInt(&cfg.Pipeline.ArchiveRetentionDays, "MANIFOLDBOT_PIPELINE_ARCHIVE_RETENTION_DAYS")
	setStr(&cfg.Pipeline.ArchiveCron, "MANIFOLDBOT_PIPELINE_ARCHIVE_CRON")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "MANIFOLDBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "MANIFOLDBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "MANIFOLDBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "MANIFOLDBOT_NOTIFY_EVENTS")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "MANIFOLDBOT_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "MANIFOLDBOT_SERVER_PORT")
	setStr(&cfg.Server.ApiKey, "MANIFOLDBOT_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "MANIFOLDBOT_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimitPerMinute, "MANIFOLDBOT_SERVER_RATE_LIMIT_PER_MINUTE")

	// ── Top-level ──
	setStr(&cfg.Mode, "MANIFOLDBOT_MODE")
	setStr(&cfg.LogLevel, "MANIFOLDBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
