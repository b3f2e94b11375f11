package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/stashctl/internal/testutil/testlog"
)

func TestLoadAppConfigExample(t *testing.T) {
	testlog.Start(t)

	cfg, err := loadAppConfig("ex.config.toml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Manager.Key != "slot1" {
		t.Fatalf("unexpected key: %q", cfg.Manager.Key)
	}
	if cfg.Manager.MaxLoadChunks != 512 {
		t.Fatalf("unexpected max load chunks: %d", cfg.Manager.MaxLoadChunks)
	}
	if cfg.Manager.Rollback.MaxRounds != 24 {
		t.Fatalf("unexpected max rounds: %d", cfg.Manager.Rollback.MaxRounds)
	}
	if cfg.Manager.Rollback.RoundRestartDelay != 5 {
		t.Fatalf("unexpected restart delay: %d", cfg.Manager.Rollback.RoundRestartDelay)
	}
	if cfg.Manager.Rollback.FreeArmor {
		t.Fatalf("expected free armor to keep default")
	}
	if cfg.Sim.CommitBias != 1 || cfg.Sim.Prefix != "backup" {
		t.Fatalf("unexpected sim config: %+v", cfg.Sim)
	}
	if cfg.AdminAddr != "127.0.0.1:9300" {
		t.Fatalf("unexpected admin addr: %q", cfg.AdminAddr)
	}
	if len(cfg.CorsOrigins) != 1 || cfg.CorsOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins: %+v", cfg.CorsOrigins)
	}
}

func TestLoadAppConfigEmptyPathUsesDefaults(t *testing.T) {
	testlog.Start(t)

	cfg, err := loadAppConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Manager.Key != "stash" {
		t.Fatalf("unexpected default key: %q", cfg.Manager.Key)
	}
	if cfg.Manager.Markers.Start != "[start]" || cfg.Manager.Markers.End != "[end]" {
		t.Fatalf("unexpected default markers: %+v", cfg.Manager.Markers)
	}
}

func TestLoadAppConfigRejectsBadValues(t *testing.T) {
	testlog.Start(t)

	cases := map[string]string{
		"empty key":      "key = \" \"\n",
		"negative bound": "max_load_chunks = -1\n",
		"unknown key":    "keyy = \"slot\"\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "stashctl.toml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("%s: write config: %v", name, err)
		}
		if _, err := loadAppConfig(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
