package saveload

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/danmuck/stashctl/internal/observability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrNilHost       = errors.New("saveload: nil host")
	ErrEmptyKey      = errors.New("saveload: empty key")
	ErrSessionActive = errors.New("saveload: session already active")
)

const autoBackupCommand = "mp_backup_round_auto 1"

// State is the session phase.
type State int

const (
	StateIdle State = iota
	StateSaving
	StateLoading
	StateAwaitingCheckpointRestore
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSaving:
		return "saving"
	case StateLoading:
		return "loading"
	case StateAwaitingCheckpointRestore:
		return "awaiting_checkpoint_restore"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Baseline is the channel pair captured before a session starts.
type Baseline struct {
	A int64
	B int64
}

// Snapshot is a read-only view of the manager's session state.
type Snapshot struct {
	Key         string
	SessionID   string
	State       State
	ChunkIndex  int
	QueueLen    int
	Accumulated int
	Baseline    Baseline
}

// Manager runs one save or load session at a time over a Host.
type Manager struct {
	mu   sync.Mutex
	host Host
	cfg  Config
	log  zerolog.Logger

	state     State
	sessionID string
	chunk     int
	queue     []int64
	acc       []int64
	baseline  Baseline

	onSave   func()
	onLoad   func(string)
	saveDone *Future[struct{}]
	loadDone *Future[string]
}

// New binds a manager to host under cfg.Key and enables automatic round
// backups on the host.
func New(host Host, cfg Config) (*Manager, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	cfg = cfg.WithDefaults()
	if cfg.Key == "" {
		return nil, ErrEmptyKey
	}
	m := &Manager{
		host:   host,
		cfg:    cfg,
		log:    log.Logger.With().Str("component", "saveload").Str("key", cfg.Key).Logger(),
		onSave: func() {},
		onLoad: func(string) {},
	}
	m.exec(autoBackupCommand)
	return m, nil
}

// OnSaveFinished registers the handler run when a save's last chunk is sent.
func (m *Manager) OnSaveFinished(fn func()) {
	if fn == nil {
		fn = func() {}
	}
	m.mu.Lock()
	m.onSave = fn
	m.mu.Unlock()
}

// OnLoadFinished registers the handler run with each loaded payload.
func (m *Manager) OnLoadFinished(fn func(payload string)) {
	if fn == nil {
		fn = func(string) {}
	}
	m.mu.Lock()
	m.onLoad = fn
	m.mu.Unlock()
}

func (m *Manager) Config() Config {
	return m.cfg
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Key:         m.cfg.Key,
		SessionID:   m.sessionID,
		State:       m.state,
		ChunkIndex:  m.chunk,
		QueueLen:    len(m.queue),
		Accumulated: len(m.acc),
		Baseline:    m.baseline,
	}
}

// OnCycleStart advances the active session by one step. The host calls it
// exactly once per cycle.
func (m *Manager) OnCycleStart() {
	m.mu.Lock()
	m.setPattern(m.cfg.RoundFilePattern)

	var notify func()
	step := "idle"
	switch {
	case m.state == StateAwaitingCheckpointRestore:
		step = "checkpoint_restore"
		m.restoreCheckpoint()
	case m.state == StateSaving && len(m.queue) > 0:
		step = "save_chunk"
		notify = m.saveStep()
	case m.state == StateLoading:
		step = "load_chunk"
		notify = m.loadStep()
	}
	m.mu.Unlock()

	observability.RecordCycleStep(m.cfg.Key, step)
	if notify != nil {
		notify()
	}
}

func (m *Manager) begin(state State) error {
	if m.state != StateIdle {
		return fmt.Errorf("%w: %s", ErrSessionActive, m.state)
	}
	m.state = state
	m.sessionID = uuid.NewString()
	m.chunk = 0
	m.queue = nil
	m.acc = nil
	m.log = m.log.With().Str("session", m.sessionID).Logger()
	return nil
}

func (m *Manager) end() {
	m.state = StateIdle
	m.sessionID = ""
	m.chunk = 0
	m.queue = nil
	m.acc = nil
	m.log = log.Logger.With().Str("component", "saveload").Str("key", m.cfg.Key).Logger()
}

// hostErr absorbs a host failure; the protocol runs on regardless.
func (m *Manager) hostErr(op string, err error) {
	if err == nil {
		return
	}
	observability.RecordHostError(m.cfg.Key, op)
	m.log.Warn().Err(err).Str("op", op).Msg("host operation failed")
}

func (m *Manager) exec(cmd string) {
	m.log.Debug().Str("command", cmd).Msg("executing command")
	m.hostErr("execute_command", m.host.ExecuteCommand(cmd))
}

func (m *Manager) execAll(cmds []string) {
	for _, cmd := range cmds {
		m.exec(cmd)
	}
}

func (m *Manager) setPattern(pattern string) {
	m.hostErr("set_round_file_pattern", m.host.SetRoundFilePattern(strings.TrimSpace(pattern)))
}

func (m *Manager) commit() {
	m.hostErr("force_commit", m.host.ForceCommit())
}

func (m *Manager) readChannels() (int64, int64) {
	a, err := m.host.ChannelA()
	m.hostErr("channel_a", err)
	b, err := m.host.ChannelB()
	m.hostErr("channel_b", err)
	return a, b
}

// writeChannels sets both channels to exact values; A only moves by delta.
func (m *Manager) writeChannels(a, b int64) {
	cur, err := m.host.ChannelA()
	m.hostErr("channel_a", err)
	if err == nil && cur != a {
		m.hostErr("add_channel_a", m.host.AddChannelA(a-cur))
	}
	m.hostErr("set_channel_b", m.host.SetChannelB(b))
}
