package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GATEWAY_BASE_URL", "http://gw:3000")
	t.Setenv("GATEWAY_WS_URL", "ws://gw:3000/ws")
	t.Setenv("BOT_PREFIX", "!duel")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	for _, k := range []string{"DUEL_GAME_TTL", "ALLOWED_ROOMS", "GATEWAY_EGRESS", "DATABASE_URL", "MESSAGES_DIR"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GameTTL != 24*time.Hour || cfg.EgressMode != "http" || cfg.DatabaseURL != "" || len(cfg.AllowedRooms) != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.RoomAllowed("anything") {
		t.Fatalf("empty allow-list must allow every room")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DUEL_GAME_TTL", "600")
	t.Setenv("ALLOWED_ROOMS", " r1, ,r2 ")
	t.Setenv("GATEWAY_EGRESS", "AUTO")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GameTTL != 10*time.Minute || cfg.EgressMode != "auto" {
		t.Fatalf("ttl = %v egress = %q", cfg.GameTTL, cfg.EgressMode)
	}
	if diff := cmp.Diff([]string{"r1", "r2"}, cfg.AllowedRooms); diff != "" {
		t.Fatalf("rooms (-want +got):\n%s", diff)
	}
	if cfg.RoomAllowed("r3") || !cfg.RoomAllowed("r2") {
		t.Fatalf("allow-list not applied")
	}
}

func TestLoadInvalidTTLFallsBack(t *testing.T) {
	setRequired(t)
	t.Setenv("DUEL_GAME_TTL", "-5")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GameTTL != 24*time.Hour {
		t.Fatalf("ttl = %v", cfg.GameTTL)
	}
}

func TestLoadRequired(t *testing.T) {
	for _, k := range []string{"GATEWAY_BASE_URL", "GATEWAY_WS_URL", "BOT_PREFIX", "REDIS_URL"} {
		t.Run(k, func(t *testing.T) {
			setRequired(t)
			t.Setenv(k, "")
			if _, err := Load(); err == nil {
				t.Fatalf("expected error without %s", k)
			}
		})
	}
}
