// Package config loads and validates the collector configuration.
//
// Configuration is YAML with ${VAR} environment expansion. Loading is split
// into three stages: Load (parse), LoadWithDefaults (fill optional fields),
// and LoadAndValidate (reject incomplete or inconsistent values).
package config
