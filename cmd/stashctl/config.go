package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/stashctl/internal/host/sim"
	"github.com/danmuck/stashctl/internal/saveload"
)

type fileConfig struct {
	Key              string         `toml:"key"`
	StartMarker      string         `toml:"start_marker"`
	EndMarker        string         `toml:"end_marker"`
	RoundFilePattern string         `toml:"round_file_pattern"`
	DropZeroChannels bool           `toml:"drop_zero_channels"`
	MaxLoadChunks    int            `toml:"max_load_chunks"`
	Rollback         rollbackConfig `toml:"rollback"`
	Sim              simConfig      `toml:"sim"`
	Admin            adminConfig    `toml:"admin"`
}

type rollbackConfig struct {
	MaxRounds                int  `toml:"max_rounds"`
	IgnoreRoundWinConditions bool `toml:"ignore_round_win_conditions"`
	RoundRestartDelay        int  `toml:"round_restart_delay"`
	FreeArmor                bool `toml:"free_armor"`
}

type simConfig struct {
	Root       string `toml:"root"`
	Prefix     string `toml:"prefix"`
	CommitBias int64  `toml:"commit_bias"`
}

type adminConfig struct {
	ID          string   `toml:"id"`
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

type appConfig struct {
	Manager     saveload.Config
	Sim         sim.Config
	AdminID     string
	AdminAddr   string
	CorsOrigins []string
}

func defaultAppConfig() appConfig {
	simCfg := sim.DefaultConfig()
	simCfg.Root = "local/backups"
	return appConfig{
		Manager:   saveload.DefaultConfig("stash"),
		Sim:       simCfg,
		AdminID:   "stashctl",
		AdminAddr: ":9300",
	}
}

func loadAppConfig(path string) (appConfig, error) {
	cfg := defaultAppConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return appConfig{}, fmt.Errorf("load stashctl config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return appConfig{}, fmt.Errorf("load stashctl config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("key") {
		cfg.Manager.Key = strings.TrimSpace(raw.Key)
	}
	if meta.IsDefined("start_marker") {
		cfg.Manager.Markers.Start = raw.StartMarker
	}
	if meta.IsDefined("end_marker") {
		cfg.Manager.Markers.End = raw.EndMarker
	}
	if meta.IsDefined("round_file_pattern") {
		cfg.Manager.RoundFilePattern = strings.TrimSpace(raw.RoundFilePattern)
	}
	if meta.IsDefined("drop_zero_channels") {
		cfg.Manager.DropZeroChannels = raw.DropZeroChannels
	}
	if meta.IsDefined("max_load_chunks") {
		if raw.MaxLoadChunks < 0 {
			return appConfig{}, fmt.Errorf("parse max_load_chunks: must be >= 0, got %d", raw.MaxLoadChunks)
		}
		cfg.Manager.MaxLoadChunks = raw.MaxLoadChunks
	}
	cfg.Manager.Rollback = cfg.Manager.Rollback.WithOverrides(rollbackOverrides(meta, raw.Rollback))

	if meta.IsDefined("sim", "root") {
		cfg.Sim.Root = strings.TrimSpace(raw.Sim.Root)
	}
	if meta.IsDefined("sim", "prefix") {
		cfg.Sim.Prefix = strings.TrimSpace(raw.Sim.Prefix)
	}
	if meta.IsDefined("sim", "commit_bias") {
		cfg.Sim.CommitBias = raw.Sim.CommitBias
	}

	if meta.IsDefined("admin", "id") {
		cfg.AdminID = strings.TrimSpace(raw.Admin.ID)
	}
	if meta.IsDefined("admin", "addr") {
		cfg.AdminAddr = strings.TrimSpace(raw.Admin.Addr)
	}
	if meta.IsDefined("admin", "cors_origins") {
		cfg.CorsOrigins = normalizeOrigins(raw.Admin.CorsOrigins)
	}

	cfg.Manager = cfg.Manager.WithDefaults()
	if cfg.Manager.Key == "" {
		return appConfig{}, fmt.Errorf("stashctl config missing key")
	}
	return cfg, nil
}

func rollbackOverrides(meta toml.MetaData, raw rollbackConfig) saveload.RollbackOverrides {
	var o saveload.RollbackOverrides
	if meta.IsDefined("rollback", "max_rounds") {
		o.MaxRounds = &raw.MaxRounds
	}
	if meta.IsDefined("rollback", "ignore_round_win_conditions") {
		o.IgnoreRoundWinConditions = &raw.IgnoreRoundWinConditions
	}
	if meta.IsDefined("rollback", "round_restart_delay") {
		o.RoundRestartDelay = &raw.RoundRestartDelay
	}
	if meta.IsDefined("rollback", "free_armor") {
		o.FreeArmor = &raw.FreeArmor
	}
	return o
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
