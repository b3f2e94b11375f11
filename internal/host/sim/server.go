package sim

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyCommand = errors.New("sim: empty command")
	ErrCycleLimit   = errors.New("sim: cycle limit reached")
)

const (
	CvarRoundFilePattern = "mp_backup_round_file_pattern"
	CvarRestoreLoadFile  = "mp_backup_restore_load_file"
)

// Config configures a simulated server.
type Config struct {
	// Root is the directory backup files are written under.
	Root string
	// Prefix expands %prefix% in the round file pattern.
	Prefix string
	// CommitBias is added to channel A by every ForceCommit, like the score
	// bonus a hostage rescue awards.
	CommitBias int64
}

func DefaultConfig() Config {
	return Config{
		Prefix:     "backup",
		CommitBias: 1,
	}
}

// Server is a single-player dedicated server reduced to what a save/load
// session touches.
type Server struct {
	mu    sync.Mutex
	cfg   Config
	files FileStore
	log   zerolog.Logger

	a     int64
	b     int64
	cvars map[string]string
	round int

	boundary bool
	restore  string
	commits  int
	history  []string
	listener func()
}

func New(cfg Config) *Server {
	if strings.TrimSpace(cfg.Prefix) == "" {
		cfg.Prefix = DefaultConfig().Prefix
	}
	return &Server{
		cfg:   cfg,
		files: NewFileStore(cfg.Root),
		log:   log.Logger.With().Str("component", "sim").Logger(),
		cvars: make(map[string]string),
		round: 1,
	}
}

// OnCycleStart registers the listener run at every boundary.
func (s *Server) OnCycleStart(fn func()) {
	s.mu.Lock()
	s.listener = fn
	s.mu.Unlock()
}

func (s *Server) ExecuteCommand(cmd string) error {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ErrEmptyCommand
	}
	name := strings.ToLower(fields[0])
	value := strings.Join(fields[1:], " ")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, strings.TrimSpace(cmd))

	switch name {
	case CvarRestoreLoadFile:
		if value == "" {
			return fmt.Errorf("sim: %s requires a file name", name)
		}
		s.restore = value
		s.boundary = true
	default:
		if value == "" {
			return nil
		}
		s.cvars[name] = value
	}
	return nil
}

func (s *Server) SetRoundFilePattern(pattern string) error {
	return s.ExecuteCommand(CvarRoundFilePattern + " " + pattern)
}

func (s *Server) RequestFileRestore(filename string) error {
	return s.ExecuteCommand(CvarRestoreLoadFile + " " + filename)
}

func (s *Server) ChannelA() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a, nil
}

func (s *Server) AddChannelA(delta int64) error {
	s.mu.Lock()
	s.a += delta
	s.mu.Unlock()
	return nil
}

func (s *Server) ChannelB() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b, nil
}

func (s *Server) SetChannelB(v int64) error {
	s.mu.Lock()
	s.b = v
	s.mu.Unlock()
	return nil
}

func (s *Server) CommitBias() int64 {
	return s.cfg.CommitBias
}

// ForceCommit applies the commit bias, writes the current round file and
// schedules the end of the cycle.
func (s *Server) ForceCommit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a += s.cfg.CommitBias
	s.boundary = true
	s.commits++

	b := Backup{
		Round:    s.round,
		File:     s.expandPattern(s.cvars[CvarRoundFilePattern]),
		ChannelA: s.a,
		ChannelB: s.b,
		SavedAt:  time.Now().UTC(),
	}
	if err := s.files.Write(b); err != nil {
		return fmt.Errorf("sim: commit round %d: %w", s.round, err)
	}
	s.log.Debug().Str("file", b.File).Int64("a", b.ChannelA).Int64("b", b.ChannelB).Msg("round committed")
	return nil
}

func (s *Server) expandPattern(pattern string) string {
	if strings.TrimSpace(pattern) == "" {
		pattern = "%prefix%_round%round%.txt"
	}
	return strings.NewReplacer(
		"%prefix%", s.cfg.Prefix,
		"%round%", strconv.Itoa(s.round),
	).Replace(pattern)
}

// Step runs one boundary if one is pending and reports whether it did.
func (s *Server) Step() bool {
	s.mu.Lock()
	if !s.boundary {
		s.mu.Unlock()
		return false
	}
	s.boundary = false
	s.round++
	if s.restore != "" {
		s.applyRestore(s.restore)
		s.restore = ""
	}
	listener := s.listener
	s.mu.Unlock()

	if listener != nil {
		listener()
	}
	return true
}

// applyRestore loads a backup into the registers. A missing or unreadable
// file leaves the registers untouched.
func (s *Server) applyRestore(name string) {
	b, err := s.files.Read(name)
	if err != nil {
		s.log.Warn().Err(err).Str("file", name).Msg("restore failed")
		return
	}
	s.a = b.ChannelA
	s.b = b.ChannelB
	s.log.Debug().Str("file", name).Int64("a", s.a).Int64("b", s.b).Msg("round restored")
}

// RunUntilIdle steps boundaries until none is pending. It returns the number
// of boundaries run, or ErrCycleLimit once max is reached with work left.
func (s *Server) RunUntilIdle(ctx context.Context, max int) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if max > 0 && n >= max {
			if s.Pending() {
				return n, fmt.Errorf("%w: %d", ErrCycleLimit, max)
			}
			return n, nil
		}
		if !s.Step() {
			return n, nil
		}
		n++
	}
}

// Pending reports whether a boundary is scheduled.
func (s *Server) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundary
}

// Registers returns both channel values.
func (s *Server) Registers() (int64, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a, s.b
}

// SetRegisters overwrites both channels, standing in for gameplay.
func (s *Server) SetRegisters(a, b int64) {
	s.mu.Lock()
	s.a, s.b = a, b
	s.mu.Unlock()
}

func (s *Server) Cvar(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cvars[strings.ToLower(name)]
	return v, ok
}

func (s *Server) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

func (s *Server) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// History returns every command executed so far.
func (s *Server) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Server) Files() FileStore {
	return s.files
}
