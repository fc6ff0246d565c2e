package config

import (
	"os"
	"strconv"
	"strings"
)

type HTTPConfig struct {
	Addr string
}

// DiscussionConfig holds the discussion policy knobs.
type DiscussionConfig struct {
	// MaxReplyDepth is the deepest nesting level a reply may create.
	// A reply whose materialized path would grow beyond this is rejected.
	MaxReplyDepth int
}

type AppConfig struct {
	ServiceName string
	LogLevel    string
	HTTP        HTTPConfig
	Discussion  DiscussionConfig
}

func Load() (AppConfig, error) {
	cfg := AppConfig{
		ServiceName: strings.TrimSpace(os.Getenv("SERVICE_NAME")),
		LogLevel:    strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		HTTP: HTTPConfig{
			Addr: strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		},
		Discussion: DiscussionConfig{
			MaxReplyDepth: envInt("MAX_REPLY_DEPTH", 6),
		},
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "discussions"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
