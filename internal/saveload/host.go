package saveload

// Host is the capability set a Manager drives. Implementations must not call
// back into the Manager synchronously from any of these methods; cycle starts
// are delivered by the host's own loop.
type Host interface {
	// ExecuteCommand runs one fire-and-forget console command.
	ExecuteCommand(cmd string) error

	// ChannelA is mutated by delta only.
	ChannelA() (int64, error)
	AddChannelA(delta int64) error

	// ChannelB is set absolutely.
	ChannelB() (int64, error)
	SetChannelB(v int64) error

	// SetRoundFilePattern names the file the next commit writes.
	SetRoundFilePattern(pattern string) error

	// RequestFileRestore loads filename into the channels at the next cycle
	// boundary.
	RequestFileRestore(filename string) error

	// ForceCommit ends the current cycle, snapshotting the channels into the
	// current round file.
	ForceCommit() error

	// CommitBias is the fixed amount ForceCommit adds to channel A.
	CommitBias() int64
}
