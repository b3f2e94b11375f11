package sim

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

var (
	ErrMissingPath = errors.New("sim: missing backup path")
	ErrPathEscape  = errors.New("sim: backup path escapes root")
)

// Backup is one round backup file.
type Backup struct {
	Round    int       `toml:"round"`
	File     string    `toml:"file"`
	ChannelA int64     `toml:"channel_a"`
	ChannelB int64     `toml:"channel_b"`
	SavedAt  time.Time `toml:"saved_at"`
}

// FileStore keeps backup files under one root directory.
type FileStore struct {
	root string
}

func NewFileStore(root string) FileStore {
	resolved := strings.TrimSpace(root)
	if resolved == "" {
		resolved = filepath.Join("local", "backups")
	}
	return FileStore{root: resolved}
}

func (s FileStore) Root() string {
	return s.root
}

func (s FileStore) Write(b Backup) error {
	p, err := s.resolvePath(b.File)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(b)
	if err != nil {
		return fmt.Errorf("sim: encode backup %s: %w", b.File, err)
	}
	return os.WriteFile(p, data, 0o644)
}

func (s FileStore) Read(name string) (Backup, error) {
	p, err := s.resolvePath(name)
	if err != nil {
		return Backup{}, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return Backup{}, err
	}
	var b Backup
	if err := toml.Unmarshal(data, &b); err != nil {
		return Backup{}, fmt.Errorf("sim: decode backup %s: %w", name, err)
	}
	return b, nil
}

// List returns backup file names relative to root, sorted.
func (s FileStore) List() ([]string, error) {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s FileStore) resolvePath(name string) (string, error) {
	rel := strings.TrimSpace(name)
	if rel == "" {
		return "", ErrMissingPath
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, rel)
	}
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	p := filepath.Clean(filepath.Join(root, rel))
	if !isWithin(p, root) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, rel)
	}
	return p, nil
}

func isWithin(path string, root string) bool {
	p := filepath.Clean(path)
	r := filepath.Clean(root)
	if p == r {
		return false
	}
	return strings.HasPrefix(p, r+string(os.PathSeparator))
}
