// Package validation rejects malformed configuration and log input before it
// reaches the delivery engine.
package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"logbull/internal/models"
)

const (
	MaxMessageLength = 10_000
	MaxFieldCount    = 100
	MaxFieldKeyLen   = 100
	MinAPIKeyLength  = 10
)

var (
	projectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	apiKeyPattern    = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
)

// ValidateProjectID checks that id is a UUID in 8-4-4-4-12 hex form.
func ValidateProjectID(id string) error {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return invalid("project ID cannot be empty")
	}
	if !projectIDPattern.MatchString(trimmed) {
		return invalid("invalid project ID format '%s'. Must be a valid UUID format: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx", trimmed)
	}
	return nil
}

// ValidateHostURL checks that host is an absolute http or https URL.
func ValidateHostURL(host string) error {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		return invalid("host URL cannot be empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return invalid("invalid host URL format: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid("host URL must use http or https scheme, got: %s", u.Scheme)
	}
	if u.Host == "" {
		return invalid("host URL must have a host component")
	}
	return nil
}

// ValidateAPIKey accepts an empty key; otherwise the key must be at least
// MinAPIKeyLength characters of [A-Za-z0-9_.-].
func ValidateAPIKey(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return nil
	}
	if utf8.RuneCountInString(trimmed) < MinAPIKeyLength {
		return invalid("API key must be at least %d characters long", MinAPIKeyLength)
	}
	if !apiKeyPattern.MatchString(trimmed) {
		return invalid("invalid API key format. API key must contain only alphanumeric characters, underscores, hyphens, and dots")
	}
	return nil
}

func ValidateLogLevel(level models.LogLevel) error {
	if !level.Valid() {
		return invalid("unknown log level %d", int(level))
	}
	return nil
}

func ValidateLogMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return invalid("log message cannot be empty")
	}
	if n := utf8.RuneCountInString(message); n > MaxMessageLength {
		return invalid("log message too long (%d chars). Maximum allowed: %d", n, MaxMessageLength)
	}
	return nil
}

func ValidateLogFields(fields map[string]any) error {
	if fields == nil {
		return nil
	}
	if len(fields) > MaxFieldCount {
		return invalid("too many fields (%d). Maximum allowed: %d", len(fields), MaxFieldCount)
	}
	for key := range fields {
		if strings.TrimSpace(key) == "" {
			return invalid("field key cannot be empty")
		}
		if n := utf8.RuneCountInString(key); n > MaxFieldKeyLen {
			return invalid("field key too long (%d chars). Maximum: %d", n, MaxFieldKeyLen)
		}
	}
	return nil
}

// ValidateConfig checks project ID, host and API key in that order.
func ValidateConfig(cfg models.Config) error {
	if err := ValidateProjectID(cfg.ProjectID); err != nil {
		return err
	}
	if err := ValidateHostURL(cfg.Host); err != nil {
		return err
	}
	return ValidateAPIKey(cfg.APIKey)
}
