package saveload

import (
	"github.com/danmuck/stashctl/internal/codec"
	"github.com/danmuck/stashctl/internal/observability"
)

// Save starts transmitting payload, two packed units per cycle. The future
// resolves once the last chunk is committed, after the OnSaveFinished handler.
func (m *Manager) Save(payload string) (*Future[struct{}], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(StateSaving); err != nil {
		return nil, err
	}

	fut := newFuture[struct{}]()
	m.saveDone = fut

	m.captureBaseline()
	m.createCheckpoint()

	m.queue = codec.PackText(m.cfg.Markers.Frame(payload))
	m.chunk = 0
	m.log.Debug().
		Int("units", len(m.queue)).
		Int("cycles", CyclesFor(len(m.queue))).
		Msg("saving")
	return fut, nil
}

// CyclesFor is the number of chunk cycles n packed units need.
func CyclesFor(n int) int {
	return (n + 1) / 2
}

func (m *Manager) pop() int64 {
	if len(m.queue) == 0 {
		return 0
	}
	v := m.queue[0]
	m.queue = m.queue[1:]
	return v
}

// saveStep sends one chunk; it returns the completion notifier after the last.
func (m *Manager) saveStep() func() {
	sent := min(len(m.queue), 2)
	a := m.pop()
	b := m.pop()
	index := m.chunk

	m.writeChannels(a-m.host.CommitBias(), b)
	m.log.Debug().Int("chunk", index).Int64("a", a).Int64("b", b).Msg("saving chunk")

	m.setPattern(m.cfg.ChunkFile(index))
	m.commit()
	m.chunk++
	observability.RecordUnits(m.cfg.Key, "sent", sent)

	if len(m.queue) > 0 {
		return nil
	}

	m.state = StateAwaitingCheckpointRestore
	handler, fut := m.onSave, m.saveDone
	m.saveDone = nil
	m.log.Info().Int("chunks", m.chunk).Msg("save finished")
	observability.RecordSession(m.cfg.Key, "save", "complete")
	return func() {
		handler()
		fut.resolve(struct{}{})
	}
}
