package models

import (
	"fmt"

	"logbull/internal/utils"
)

// Config identifies the project and endpoint a client ships to.
// It is built once and passed by value; nothing mutates it afterwards.
type Config struct {
	ProjectID string
	Host      string
	APIKey    string
	MinLevel  LogLevel
}

// NewConfig returns a Config with MinLevel defaulted to INFO.
func NewConfig(projectID, host, apiKey string) Config {
	return Config{
		ProjectID: projectID,
		Host:      host,
		APIKey:    apiKey,
		MinLevel:  LevelInfo,
	}
}

// EffectiveMinLevel returns MinLevel, or INFO when unset.
func (c Config) EffectiveMinLevel() LogLevel {
	if c.MinLevel == 0 {
		return LevelInfo
	}
	return c.MinLevel
}

// String never prints the API key, only a short fingerprint of it.
func (c Config) String() string {
	key := "<none>"
	if c.APIKey != "" {
		key = utils.Fingerprint(c.APIKey)
	}
	return fmt.Sprintf("Config{projectID=%s, host=%s, apiKey=%s, minLevel=%s}",
		c.ProjectID, c.Host, key, c.EffectiveMinLevel())
}
