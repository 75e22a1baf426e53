package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *CollectorConfig) Validate() error {
	if c.Station.RegionID <= 0 {
		return errors.New("station.region_id is required")
	}
	if c.Station.StationID <= 0 {
		return errors.New("station.station_id is required")
	}
	if c.Station.SnapshotChunkSize < 1 {
		return errors.New("station.snapshot_chunk_size must be >= 1")
	}
	if c.Station.Concurrency < 1 {
		return errors.New("station.concurrency must be >= 1")
	}
	if c.Station.ExpiryWindow < 0 {
		return errors.New("station.expiry_window must be >= 0")
	}
	if c.Station.CommitTimeout <= 0 {
		return errors.New("station.commit_timeout must be > 0")
	}

	if c.ESI.BaseURL == "" {
		return errors.New("esi.base_url is required")
	}

	if err := c.Database.Postgres.validate("database.postgres"); err != nil {
		return err
	}

	if c.Alerts.TelegramToken != "" && c.Alerts.ChatID == "" {
		return errors.New("alerts.chat_id is required when alerts.telegram_token is set")
	}
	if c.Alerts.FailureStreak < 1 {
		return errors.New("alerts.failure_streak must be >= 1")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
