package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultESIBaseURL        = "https://esi.evetech.net/latest"
	DefaultESIUserAgent      = "stationledger-marketdata"
	DefaultESITimeout        = 30 * time.Second
	DefaultESIMaxRetries     = 3
	DefaultESIRetryBackoff   = 1 * time.Second
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultCollectInterval   = 1 * time.Hour
	DefaultExpiryWindow      = 30 * time.Minute
	DefaultCommitTimeout     = 5 * time.Minute
	DefaultSnapshotChunkSize = 500
	DefaultConcurrency       = 20
	DefaultCacheTTL          = 5 * time.Minute
	DefaultFailureStreak     = 3
	DefaultNotifyCooldown    = 1 * time.Hour
	DefaultAdminAddr         = ":8080"
)

func (c *CollectorConfig) applyDefaults() {
	// Station defaults
	if c.Station.CollectInterval == 0 {
		c.Station.CollectInterval = DefaultCollectInterval
	}
	if c.Station.ExpiryWindow == 0 {
		c.Station.ExpiryWindow = DefaultExpiryWindow
	}
	if c.Station.CommitTimeout == 0 {
		c.Station.CommitTimeout = DefaultCommitTimeout
	}
	if c.Station.SnapshotChunkSize == 0 {
		c.Station.SnapshotChunkSize = DefaultSnapshotChunkSize
	}
	if c.Station.Concurrency == 0 {
		c.Station.Concurrency = DefaultConcurrency
	}

	// ESI defaults
	if c.ESI.BaseURL == "" {
		c.ESI.BaseURL = DefaultESIBaseURL
	}
	if c.ESI.UserAgent == "" {
		c.ESI.UserAgent = DefaultESIUserAgent
	}
	if c.ESI.Timeout == 0 {
		c.ESI.Timeout = DefaultESITimeout
	}
	if c.ESI.MaxRetries == 0 {
		c.ESI.MaxRetries = DefaultESIMaxRetries
	}
	if c.ESI.RetryBackoff == 0 {
		c.ESI.RetryBackoff = DefaultESIRetryBackoff
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Cache defaults
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}

	// Alerts defaults
	if c.Alerts.FailureStreak == 0 {
		c.Alerts.FailureStreak = DefaultFailureStreak
	}
	if c.Alerts.NotifyCooldown == 0 {
		c.Alerts.NotifyCooldown = DefaultNotifyCooldown
	}

	// Admin defaults
	if c.Admin.Addr == "" {
		c.Admin.Addr = DefaultAdminAddr
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
