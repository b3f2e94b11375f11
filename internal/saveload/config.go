package saveload

import (
	"fmt"
	"strings"

	"github.com/danmuck/stashctl/internal/codec"
)

const (
	DefaultRoundFilePattern = "%prefix%_round%round%.txt"

	// session values forced while a session is in flight
	sessionMaxRounds         = 99999
	sessionRoundRestartDelay = 0
)

// Rollback holds the cycle configuration restored once a session ends.
type Rollback struct {
	MaxRounds                int
	IgnoreRoundWinConditions bool
	RoundRestartDelay        int
	FreeArmor                bool
}

// RollbackOverrides selects the Rollback fields to replace; nil keeps the
// current value.
type RollbackOverrides struct {
	MaxRounds                *int
	IgnoreRoundWinConditions *bool
	RoundRestartDelay        *int
	FreeArmor                *bool
}

func DefaultRollback() Rollback {
	return Rollback{
		MaxRounds:                30,
		IgnoreRoundWinConditions: false,
		RoundRestartDelay:        7,
		FreeArmor:                false,
	}
}

// WithOverrides returns r with every non-nil override applied.
func (r Rollback) WithOverrides(o RollbackOverrides) Rollback {
	if o.MaxRounds != nil {
		r.MaxRounds = *o.MaxRounds
	}
	if o.IgnoreRoundWinConditions != nil {
		r.IgnoreRoundWinConditions = *o.IgnoreRoundWinConditions
	}
	if o.RoundRestartDelay != nil {
		r.RoundRestartDelay = *o.RoundRestartDelay
	}
	if o.FreeArmor != nil {
		r.FreeArmor = *o.FreeArmor
	}
	return r
}

// Commands renders r as console commands in a fixed order.
func (r Rollback) Commands() []string {
	return []string{
		fmt.Sprintf("mp_maxrounds %d", r.MaxRounds),
		fmt.Sprintf("mp_ignore_round_win_conditions %d", boolInt(r.IgnoreRoundWinConditions)),
		fmt.Sprintf("mp_round_restart_delay %d", r.RoundRestartDelay),
		fmt.Sprintf("mp_free_armor %d", boolInt(r.FreeArmor)),
	}
}

func sessionCommands() []string {
	return Rollback{
		MaxRounds:         sessionMaxRounds,
		RoundRestartDelay: sessionRoundRestartDelay,
	}.Commands()
}

// Config configures one Manager.
type Config struct {
	// Key prefixes every checkpoint and chunk file name.
	Key              string
	Markers          codec.Markers
	RoundFilePattern string
	Rollback         Rollback

	// DropZeroChannels skips zero channel reads during load. A packed zero is
	// a valid unit (one 0x00 byte), so this only exists for compatibility
	// with files written by hosts that relied on it.
	DropZeroChannels bool

	// MaxLoadChunks bounds a load; 0 means unbounded. An exceeded bound
	// completes the load with an empty payload. A host that leaves the
	// channels untouched for a missing chunk file hands back the baseline,
	// which is accumulated as payload units until the bound is hit.
	MaxLoadChunks int
}

func DefaultConfig(key string) Config {
	return Config{
		Key:              key,
		Markers:          codec.DefaultMarkers(),
		RoundFilePattern: DefaultRoundFilePattern,
		Rollback:         DefaultRollback(),
	}
}

// WithDefaults fills zero-valued fields. Rollback is kept as given; start
// from DefaultConfig to get the default rollback.
func (c Config) WithDefaults() Config {
	c.Key = strings.TrimSpace(c.Key)
	c.Markers = c.Markers.WithDefaults()
	if strings.TrimSpace(c.RoundFilePattern) == "" {
		c.RoundFilePattern = DefaultRoundFilePattern
	}
	if c.MaxLoadChunks < 0 {
		c.MaxLoadChunks = 0
	}
	return c
}

// CheckpointFile is the file anchoring a session.
func (c Config) CheckpointFile() string {
	return c.Key + "_start.txt"
}

// ChunkFile is the file carrying chunk index i.
func (c Config) ChunkFile(i int) string {
	return fmt.Sprintf("%s_%d.txt", c.Key, i)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
