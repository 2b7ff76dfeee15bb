package httpserver

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultListenAddr    = ":8080"
	defaultAllowedOrigin = "http://localhost:8000"
	defaultSessionIssuer = "clubdesk"
	defaultTokenTTL      = 12 * time.Hour
)

// Config aggregates runtime settings for the HTTP facade.
type Config struct {
	ListenAddr        string
	AllowedOrigins    []string
	SessionSigningKey string
	SessionIssuer     string
	TokenTTL          time.Duration
}

// Validate fills defaults and ensures the configuration contains sane values.
func (cfg *Config) Validate() error {
	cfg.ListenAddr = defaultIfEmpty(cfg.ListenAddr, defaultListenAddr)
	cfg.SessionIssuer = defaultIfEmpty(cfg.SessionIssuer, defaultSessionIssuer)
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{defaultAllowedOrigin}
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if strings.TrimSpace(cfg.SessionSigningKey) == "" {
		return fmt.Errorf("session signing key is required")
	}
	return nil
}

func defaultIfEmpty(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// ParseAllowedOrigins splits comma-delimited origins into a slice.
func ParseAllowedOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	normalized := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}
