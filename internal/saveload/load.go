package saveload

import (
	"github.com/danmuck/stashctl/internal/codec"
	"github.com/danmuck/stashctl/internal/observability"
)

// Load starts reading chunk files back until the end marker decodes. The
// future resolves with the extracted payload, after the OnLoadFinished
// handler.
func (m *Manager) Load() (*Future[string], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(StateLoading); err != nil {
		return nil, err
	}

	fut := newFuture[string]()
	m.loadDone = fut

	m.captureBaseline()
	m.createCheckpoint()

	m.log.Debug().Msg("starting load")
	m.requestChunk()
	return fut, nil
}

func (m *Manager) requestChunk() {
	file := m.cfg.ChunkFile(m.chunk)
	m.log.Debug().Str("file", file).Msg("loading chunk")
	m.hostErr("request_file_restore", m.host.RequestFileRestore(file))
	m.setPattern(file)
}

// accept appends one channel read to the accumulator.
func (m *Manager) accept(v int64) {
	if v == 0 && m.cfg.DropZeroChannels {
		return
	}
	m.acc = append(m.acc, v)
}

// loadStep consumes the channels restored for the current chunk.
func (m *Manager) loadStep() func() {
	a, b := m.readChannels()
	m.log.Debug().Int("chunk", m.chunk).Int64("a", a).Int64("b", b).Msg("loaded chunk")
	before := len(m.acc)
	m.accept(a)
	m.accept(b)
	observability.RecordUnits(m.cfg.Key, "received", len(m.acc)-before)

	m.writeChannels(m.baseline.A, m.baseline.B)

	decoded := codec.UnpackText(m.acc...)
	m.log.Debug().Str("decoded", decoded).Msg("decoded so far")

	if m.cfg.Markers.Complete(decoded) {
		return m.finishLoad(m.cfg.Markers.Extract(decoded), "complete")
	}
	if m.cfg.MaxLoadChunks > 0 && m.chunk+1 >= m.cfg.MaxLoadChunks {
		m.log.Warn().Int("chunks", m.chunk+1).Msg("load bound reached without end marker")
		return m.finishLoad("", "exhausted")
	}
	m.chunk++
	m.requestChunk()
	return nil
}

func (m *Manager) finishLoad(payload, outcome string) func() {
	chunks := m.chunk + 1
	m.chunk = 0
	m.acc = nil
	m.state = StateAwaitingCheckpointRestore

	handler, fut := m.onLoad, m.loadDone
	m.loadDone = nil
	m.log.Info().Int("chunks", chunks).Int("bytes", len(payload)).Msg("load finished")
	observability.RecordSession(m.cfg.Key, "load", outcome)

	m.commit()
	return func() {
		handler(payload)
		fut.resolve(payload)
	}
}
