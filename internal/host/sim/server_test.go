package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/danmuck/stashctl/internal/testutil/testlog"
)

func TestForceCommitWritesExpandedPattern(t *testing.T) {
	testlog.Start(t)
	s := New(Config{Root: t.TempDir(), Prefix: "srv", CommitBias: 1})
	s.SetRegisters(10, 20)

	if err := s.ForceCommit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	b, err := s.Files().Read("srv_round1.txt")
	if err != nil {
		t.Fatalf("read default pattern file: %v", err)
	}
	if b.ChannelA != 11 || b.ChannelB != 20 || b.Round != 1 {
		t.Fatalf("unexpected backup: %+v", b)
	}
	if a, _ := s.Registers(); a != 11 {
		t.Fatalf("commit bias should land on channel a, got %d", a)
	}
	if !s.Pending() {
		t.Fatalf("commit should schedule a boundary")
	}
}

func TestRestoreAppliesBeforeListener(t *testing.T) {
	testlog.Start(t)
	s := New(Config{Root: t.TempDir(), CommitBias: 0})
	if err := s.SetRoundFilePattern("slot_%round%.txt"); err != nil {
		t.Fatalf("pattern: %v", err)
	}
	s.SetRegisters(5, 6)
	if err := s.ForceCommit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	s.Step()
	s.SetRegisters(0, 0)

	var seenA, seenB int64
	s.OnCycleStart(func() { seenA, seenB = s.Registers() })
	if err := s.RequestFileRestore("slot_1.txt"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if a, b := s.Registers(); a != 0 || b != 0 {
		t.Fatalf("restore must wait for the boundary, got a=%d b=%d", a, b)
	}
	if !s.Step() {
		t.Fatalf("expected boundary")
	}
	if seenA != 5 || seenB != 6 {
		t.Fatalf("listener saw a=%d b=%d want 5/6", seenA, seenB)
	}
}

func TestRestoreMissingFileKeepsRegisters(t *testing.T) {
	testlog.Start(t)
	s := New(Config{Root: t.TempDir()})
	s.SetRegisters(3, 4)
	if err := s.RequestFileRestore("nope.txt"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !s.Step() {
		t.Fatalf("missing restore still ends the cycle")
	}
	if a, b := s.Registers(); a != 3 || b != 4 {
		t.Fatalf("registers changed: a=%d b=%d", a, b)
	}
}

func TestExecuteCommandParsesCvars(t *testing.T) {
	testlog.Start(t)
	s := New(Config{Root: t.TempDir()})
	if err := s.ExecuteCommand("  "); !errors.Is(err, ErrEmptyCommand) {
		t.Fatalf("expected ErrEmptyCommand, got %v", err)
	}
	if err := s.ExecuteCommand("MP_MaxRounds 99999"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if v, ok := s.Cvar("mp_maxrounds"); !ok || v != "99999" {
		t.Fatalf("unexpected cvar: %q ok=%v", v, ok)
	}
	if err := s.ExecuteCommand(CvarRestoreLoadFile); err == nil {
		t.Fatalf("restore without file should fail")
	}
	if len(s.History()) != 2 {
		t.Fatalf("unexpected history: %v", s.History())
	}
}

func TestRunUntilIdleStopsAtLimit(t *testing.T) {
	testlog.Start(t)
	s := New(Config{Root: t.TempDir()})
	s.OnCycleStart(func() { _ = s.ForceCommit() })
	if err := s.ForceCommit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	n, err := s.RunUntilIdle(context.Background(), 4)
	if !errors.Is(err, ErrCycleLimit) || n != 4 {
		t.Fatalf("expected cycle limit after 4, got n=%d err=%v", n, err)
	}
	if s.Round() != 5 {
		t.Fatalf("unexpected round: %d", s.Round())
	}
}

func TestFileStoreRejectsEscapes(t *testing.T) {
	testlog.Start(t)
	fs := NewFileStore(t.TempDir())
	if err := fs.Write(Backup{File: "../outside.txt"}); !errors.Is(err, ErrPathEscape) {
		t.Fatalf("expected ErrPathEscape, got %v", err)
	}
	if _, err := fs.Read(""); !errors.Is(err, ErrMissingPath) {
		t.Fatalf("expected ErrMissingPath, got %v", err)
	}
	if err := fs.Write(Backup{File: "b.txt"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fs.Write(Backup{File: "a.txt"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	names, err := fs.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 || names[0] != "a.txt" || names[1] != "b.txt" {
		t.Fatalf("unexpected list: %v", names)
	}
}
