package config

import "time"

// CollectorConfig is the root configuration for a collector instance.
type CollectorConfig struct {
	Station  StationConfig  `yaml:"station"`
	ESI      ESIConfig      `yaml:"esi"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Admin    AdminConfig    `yaml:"admin"`
}

// StationConfig identifies the watched station and tunes one collection pass.
type StationConfig struct {
	RegionID  int32 `yaml:"region_id"`
	StationID int64 `yaml:"station_id"`

	CollectInterval   time.Duration `yaml:"collect_interval"`
	ExpiryWindow      time.Duration `yaml:"expiry_window"`
	CommitTimeout     time.Duration `yaml:"commit_timeout"`
	SnapshotChunkSize int           `yaml:"snapshot_chunk_size"`
	Concurrency       int           `yaml:"concurrency"`
	ForceRefresh      bool          `yaml:"force_refresh"`
}

// ESIConfig holds upstream API settings.
type ESIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// DatabaseConfig holds the PostgreSQL connection.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// CacheConfig holds the optional Redis response cache.
// An empty Addr disables caching entirely.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// AlertsConfig holds the failure notification channel and throttle policy.
// An empty TelegramToken disables alerting.
type AlertsConfig struct {
	TelegramToken  string        `yaml:"telegram_token"`
	ChatID         string        `yaml:"chat_id"`
	FailureStreak  int           `yaml:"failure_streak"`
	NotifyCooldown time.Duration `yaml:"notify_cooldown"`
}

// AdminConfig holds the operator-facing HTTP server settings.
type AdminConfig struct {
	Addr string `yaml:"addr"`
}
