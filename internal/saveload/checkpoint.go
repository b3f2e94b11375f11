package saveload

// captureBaseline stores the current channel pair as read.
func (m *Manager) captureBaseline() {
	a, b := m.readChannels()
	m.baseline = Baseline{A: a, B: b}
	m.log.Debug().Int64("a", a).Int64("b", b).Msg("baseline captured")
}

// createCheckpoint forces the session configuration and commits the baseline
// into the checkpoint file, then zeroes both channels. Restoring the
// checkpoint therefore reinstates the baseline.
func (m *Manager) createCheckpoint() {
	m.log.Debug().Str("file", m.cfg.CheckpointFile()).Msg("creating checkpoint")
	m.execAll(sessionCommands())
	m.setPattern(m.cfg.CheckpointFile())
	m.writeChannels(m.baseline.A-m.host.CommitBias(), m.baseline.B)
	m.commit()
	m.writeChannels(0, 0)
}

// restoreCheckpoint is the terminal step of every session.
func (m *Manager) restoreCheckpoint() {
	m.log.Debug().Str("file", m.cfg.CheckpointFile()).Msg("restoring checkpoint")
	m.hostErr("request_file_restore", m.host.RequestFileRestore(m.cfg.CheckpointFile()))
	m.execAll(m.cfg.Rollback.Commands())
	m.end()
}
