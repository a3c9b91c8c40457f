package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	GatewayBaseURL string
	GatewayWSURL   string
	// EgressMode is http, ws or auto.
	EgressMode string

	BotPrefix string

	XUserID    string
	XUserEmail string
	XSessionID string

	RedisURL    string
	DatabaseURL string

	AllowedRooms []string

	GameTTL     time.Duration
	MessagesDir string
}

const defaultGameTTLSec = 86400

func Load() (*AppConfig, error) {
	cfg := &AppConfig{GameTTL: defaultGameTTLSec * time.Second, EgressMode: "http"}

	cfg.GatewayBaseURL = env("GATEWAY_BASE_URL")
	cfg.GatewayWSURL = env("GATEWAY_WS_URL")
	cfg.BotPrefix = env("BOT_PREFIX")
	switch m := strings.ToLower(env("GATEWAY_EGRESS")); m {
	case "ws", "auto":
		cfg.EgressMode = m
	}

	cfg.XUserID = env("X_USER_ID")
	cfg.XUserEmail = env("X_USER_EMAIL")
	cfg.XSessionID = env("X_SESSION_ID")

	cfg.RedisURL = env("REDIS_URL")
	cfg.DatabaseURL = env("DATABASE_URL")
	cfg.MessagesDir = env("MESSAGES_DIR")
	cfg.AllowedRooms = splitList(env("ALLOWED_ROOMS"))

	if v := env("DUEL_GAME_TTL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.GameTTL = time.Duration(n) * time.Second
		}
	}

	if cfg.GatewayBaseURL == "" {
		return nil, errors.New("GATEWAY_BASE_URL is required")
	}
	if cfg.GatewayWSURL == "" {
		return nil, errors.New("GATEWAY_WS_URL is required")
	}
	if cfg.BotPrefix == "" {
		return nil, errors.New("BOT_PREFIX is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	return cfg, nil
}

// RoomAllowed reports whether the bot should answer in room. An empty list allows every room.
func (c *AppConfig) RoomAllowed(room string) bool {
	if len(c.AllowedRooms) == 0 {
		return true
	}
	for _, r := range c.AllowedRooms {
		if r == room {
			return true
		}
	}
	return false
}

func env(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
